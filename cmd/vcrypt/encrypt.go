package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vaultfs/vcrypt/internal/cryptoengine"
)

var encryptPassword string

var encryptCmd = &cobra.Command{
	Use:   "encrypt <vault-id> <source-dir>",
	Short: "Encrypt a plaintext directory tree into a vault",
	Long: `Encrypt walks source-dir and writes an encrypted copy of every file
and directory into the vault's storage, assigning each directory a fresh
random directory ID and encrypting every filename deterministically.`,
	Example: `  vcrypt encrypt 3f9a... ./my-notes`,
	Args:    cobra.ExactArgs(2),
	RunE:    runEncrypt,
}

func init() {
	rootCmd.AddCommand(encryptCmd)

	encryptCmd.Flags().StringVarP(&encryptPassword, "password", "p", "", "Vault password (will prompt if not provided)")
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	vaultID := args[0]
	source, err := filepath.Abs(args[1])
	if err != nil {
		return err
	}

	password := encryptPassword
	if password == "" {
		password, err = promptPassword("Vault password: ")
		if err != nil {
			return err
		}
	}

	opts := []cryptoengine.Option{
		cryptoengine.WithWorkerCount(cfg.Worker.Count),
		cryptoengine.WithLogger(logger),
	}

	if _, err := svc.OpenVault(vaultID, password, opts...); err != nil {
		if jsonOutput {
			printJSON(map[string]interface{}{"success": false, "error": err.Error()})
		} else {
			printError("Failed to open vault: %v", err)
		}
		return err
	}
	defer svc.CloseVault(vaultID)

	if err := svc.EncryptDirectory(vaultID, source); err != nil {
		if jsonOutput {
			printJSON(map[string]interface{}{"success": false, "error": err.Error()})
		} else {
			printError("Encryption failed: %v", err)
		}
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{"success": true, "vault_id": vaultID, "source": source})
		return nil
	}

	printSuccess("Encrypted %s into vault %s", source, vaultID)
	return nil
}
