package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vaultfs/vcrypt/internal/cryptoengine"
)

var initName string
var initPassword string

var initCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Create a new encrypted vault",
	Long: `Init generates a fresh key pair, wraps it under a password using
scrypt and RFC 3394 AES key wrap, and writes the result as path/vault.key.
The vault is also registered so later commands can refer to it by ID.`,
	Example: `  vcrypt init ./my-vault --name "My Vault"`,
	Args:    cobra.ExactArgs(1),
	RunE:    runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initName, "name", "n", "", "Human-readable vault name (default: directory name)")
	initCmd.Flags().StringVarP(&initPassword, "password", "p", "", "Vault password (will prompt if not provided)")
}

func runInit(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	name := initName
	if name == "" {
		name = filepath.Base(path)
	}

	password := initPassword
	if password == "" {
		password, err = promptNewPassword()
		if err != nil {
			return err
		}
	}

	opts := []cryptoengine.Option{
		cryptoengine.WithScryptParams(cfg.Vault.ScryptCostParam, cfg.Vault.ScryptBlockSize),
		cryptoengine.WithWorkerCount(cfg.Worker.Count),
		cryptoengine.WithLogger(logger),
	}

	record, err := svc.CreateVault(name, path, password, opts...)
	if err != nil {
		if jsonOutput {
			printJSON(map[string]interface{}{"success": false, "error": err.Error()})
		} else {
			printError("Failed to create vault: %v", err)
		}
		return err
	}
	svc.CloseVault(record.ID)

	if jsonOutput {
		printJSON(map[string]interface{}{
			"success":  true,
			"vault_id": record.ID,
			"name":     record.Name,
			"path":     record.Path,
		})
		return nil
	}

	printSuccess("Created vault %q", record.Name)
	printInfo("  id:   %s", record.ID)
	printInfo("  path: %s", record.Path)
	return nil
}
