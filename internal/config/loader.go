package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles configuration loading from compiled-in defaults, a config
// file, and environment variables (VCRYPT_ prefix), in that order of
// increasing precedence.
type Loader struct {
	v          *viper.Viper
	configPath string
}

// NewLoader creates a config loader. configPath may be empty, in which
// case the loader searches the default locations returned by
// defaultSearchDirs.
func NewLoader(configPath string) *Loader {
	v := viper.New()
	v.SetEnvPrefix("VCRYPT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v, configPath: configPath}
}

// Load reads configuration from defaults, then an optional file, then the
// environment, and validates the merged result.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()
	l.bindDefaults(cfg)

	if l.configPath != "" {
		l.v.SetConfigFile(l.configPath)
	} else {
		l.v.SetConfigName("vcrypt")
		l.v.SetConfigType("json")
		l.v.AddConfigPath(".")
		for _, dir := range defaultSearchDirs() {
			l.v.AddConfigPath(dir)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// bindDefaults registers every field's compiled-in default with viper so
// AutomaticEnv has a known key to check for an override, and so Unmarshal
// fills in fields absent from both the config file and the environment.
func (l *Loader) bindDefaults(cfg *Config) {
	l.v.SetDefault("vault.scrypt_cost_param", cfg.Vault.ScryptCostParam)
	l.v.SetDefault("vault.scrypt_block_size", cfg.Vault.ScryptBlockSize)
	l.v.SetDefault("vault.key_length_bits", cfg.Vault.KeyLengthBits)
	l.v.SetDefault("vault.shard_separator", cfg.Vault.ShardSeparator)

	l.v.SetDefault("storage.data_dir", cfg.Storage.DataDir)
	l.v.SetDefault("storage.registry_dir", cfg.Storage.RegistryDir)
	l.v.SetDefault("storage.temp_dir", cfg.Storage.TempDir)
	l.v.SetDefault("storage.max_file_size", cfg.Storage.MaxFileSize)

	l.v.SetDefault("worker.count", cfg.Worker.Count)
	l.v.SetDefault("worker.max_batch_blocks", cfg.Worker.MaxBatchBlocks)

	l.v.SetDefault("log.level", cfg.Log.Level)
	l.v.SetDefault("log.format", cfg.Log.Format)
	l.v.SetDefault("log.file", cfg.Log.File)
	l.v.SetDefault("log.max_size", cfg.Log.MaxSize)
	l.v.SetDefault("log.max_backups", cfg.Log.MaxBackups)
	l.v.SetDefault("log.max_age", cfg.Log.MaxAge)
	l.v.SetDefault("log.color", cfg.Log.Color)
	l.v.SetDefault("log.timestamp", cfg.Log.Timestamp)

	l.v.SetDefault("dev.insecure", cfg.Dev.Insecure)
	l.v.SetDefault("dev.trace_path", cfg.Dev.TracePath)
}

// defaultSearchDirs returns additional directories viper should search for
// a vcrypt.json config file, beyond the current working directory.
func defaultSearchDirs() []string {
	var dirs []string
	if homeDir, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs,
			filepath.Join(homeDir, ".config", "vcrypt"),
			filepath.Join(homeDir, ".vcrypt"),
		)
	}
	return dirs
}

// SaveExample writes an example config file.
func SaveExample(path string) error {
	cfg := DefaultConfig()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}
