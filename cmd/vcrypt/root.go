package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vaultfs/vcrypt/internal/config"
	"github.com/vaultfs/vcrypt/internal/events"
	"github.com/vaultfs/vcrypt/internal/registry"
	"github.com/vaultfs/vcrypt/internal/vaultservice"
)

var (
	cfg    *config.Config
	logger *events.Logger
	svc    *vaultservice.Service

	configPath      string
	jsonOutput      bool
	registryBackend string
)

var rootCmd = &cobra.Command{
	Use:   "vcrypt",
	Short: "Create and operate client-side encrypted vaults",
	Long: `vcrypt derives, wraps, and applies the keys behind a client-side
encrypted vault: password-based key derivation, deterministic filename
encryption, and authenticated chunked file content, all without a server
ever seeing a plaintext byte.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to config file (default: search standard locations)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Emit machine-readable JSON output")
	rootCmd.PersistentFlags().StringVar(&registryBackend, "registry-backend", "json",
		"Vault registry backend: json or sqlite")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader(configPath)
	loaded, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = loaded

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	logger, err = events.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	reg, err := openRegistry()
	if err != nil {
		return fmt.Errorf("open registry: %w", err)
	}

	svc = vaultservice.NewService(reg, logger, cfg.Vault.ShardSeparator)
	return nil
}

func openRegistry() (registry.Registry, error) {
	switch registryBackend {
	case "sqlite":
		return registry.NewSQLiteRegistry(filepath.Join(cfg.Storage.RegistryDir, "registry.db"), logger)
	case "json", "":
		return registry.NewJSONRegistry(cfg.Storage.RegistryDir, logger)
	default:
		return nil, fmt.Errorf("unknown registry backend %q", registryBackend)
	}
}

func printSuccess(format string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(os.Stdout, format+"\n", args...)
}

func printError(format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(os.Stderr, format+"\n", args...)
}

func printWarning(format string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(os.Stderr, format+"\n", args...)
}

func printInfo(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, format+"\n", args...)
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
