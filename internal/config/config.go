package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all application configuration.
type Config struct {
	// Vault cryptography parameters.
	Vault VaultConfig `json:"vault" mapstructure:"vault"`

	// Local storage paths.
	Storage StorageConfig `json:"storage" mapstructure:"storage"`

	// Worker pool behavior for file encryption/decryption.
	Worker WorkerConfig `json:"worker" mapstructure:"worker"`

	// Logging
	Log LogConfig `json:"log" mapstructure:"log"`

	// Development options
	Dev DevConfig `json:"dev,omitempty" mapstructure:"dev"`
}

// VaultConfig controls key-derivation and filename-codec parameters used
// when a new vault is created. Opening an existing vault always uses the
// parameters stored in its key file, not these.
type VaultConfig struct {
	ScryptCostParam int    `json:"scrypt_cost_param" mapstructure:"scrypt_cost_param"` // N, must be a power of two
	ScryptBlockSize int    `json:"scrypt_block_size" mapstructure:"scrypt_block_size"` // r
	KeyLengthBits   int    `json:"key_length_bits" mapstructure:"key_length_bits"`
	ShardSeparator  string `json:"shard_separator" mapstructure:"shard_separator"` // e.g. "/" between a directory's 2-char shard prefix and the rest
}

// StorageConfig for local file paths.
type StorageConfig struct {
	DataDir     string `json:"data_dir" mapstructure:"data_dir"`         // Base directory for all data
	RegistryDir string `json:"registry_dir" mapstructure:"registry_dir"` // Vault registry storage
	TempDir     string `json:"temp_dir" mapstructure:"temp_dir"`         // Temporary files
	MaxFileSize int64  `json:"max_file_size" mapstructure:"max_file_size"`
}

// WorkerConfig for the encryption/decryption worker pool.
type WorkerConfig struct {
	Count          int `json:"count" mapstructure:"count"` // 0 means use runtime.NumCPU()
	MaxBatchBlocks int `json:"max_batch_blocks" mapstructure:"max_batch_blocks"`
}

// LogConfig for logging behavior.
type LogConfig struct {
	Level      string `json:"level" mapstructure:"level"`   // debug, info, warn, error
	Format     string `json:"format" mapstructure:"format"` // text, json
	File       string `json:"file" mapstructure:"file"`     // Log file path (empty = stdout)
	MaxSize    int    `json:"max_size" mapstructure:"max_size"`
	MaxBackups int    `json:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `json:"max_age" mapstructure:"max_age"`
	Color      bool   `json:"color" mapstructure:"color"`
	Timestamp  bool   `json:"timestamp" mapstructure:"timestamp"`
}

// DevConfig for development/debugging. These fields are loaded like any
// other setting; nothing warns when they are set.
type DevConfig struct {
	// Insecure is loaded from config but no command reads it; the CLI's
	// decrypt paths always authenticate content MACs.
	Insecure  bool   `json:"insecure" mapstructure:"insecure"`
	TracePath string `json:"trace_path" mapstructure:"trace_path"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() *Config {
	dataDir := ".vcrypt"

	return &Config{
		Vault: VaultConfig{
			ScryptCostParam: 1 << 15,
			ScryptBlockSize: 8,
			KeyLengthBits:   256,
			ShardSeparator:  "/",
		},
		Storage: StorageConfig{
			DataDir:     dataDir,
			RegistryDir: filepath.Join(dataDir, "registry"),
			TempDir:     filepath.Join(dataDir, "temp"),
			MaxFileSize: 10 * 1024 * 1024 * 1024, // 10GB
		},
		Worker: WorkerConfig{
			Count:          0,
			MaxBatchBlocks: 64,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			File:       "",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     7,
			Color:      true,
			Timestamp:  true,
		},
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Vault.ScryptCostParam <= 1 || c.Vault.ScryptCostParam&(c.Vault.ScryptCostParam-1) != 0 {
		return errors.New("vault.scrypt_cost_param must be a power of two greater than 1")
	}

	if c.Vault.ScryptBlockSize <= 0 {
		return errors.New("vault.scrypt_block_size must be positive")
	}

	switch c.Vault.KeyLengthBits {
	case 128, 192, 256:
		// supported
	default:
		return fmt.Errorf("vault.key_length_bits must be 128, 192, or 256, got %d", c.Vault.KeyLengthBits)
	}

	if c.Storage.MaxFileSize <= 0 {
		return errors.New("storage.max_file_size must be positive")
	}

	if c.Worker.Count < 0 {
		return errors.New("worker.count must not be negative")
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDir,
		c.Storage.RegistryDir,
		c.Storage.TempDir,
	}

	if c.Log.File != "" {
		dirs = append(dirs, filepath.Dir(c.Log.File))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
