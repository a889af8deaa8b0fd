package main

import (
	"github.com/spf13/cobra"

	"github.com/vaultfs/vcrypt/internal/cryptoengine"
)

var unlockPassword string

var unlockCmd = &cobra.Command{
	Use:   "unlock <vault-id>",
	Short: "Verify a vault password without changing any files",
	Long: `Unlock reads the vault's key file, unwraps the master keys under the
given password, and reports success or cryptoengine.ErrWrongPassword. It
does not leave the vault open in any persistent state; each vcrypt
invocation opens and closes its own Cryptor.`,
	Args: cobra.ExactArgs(1),
	RunE: runUnlock,
}

func init() {
	rootCmd.AddCommand(unlockCmd)

	unlockCmd.Flags().StringVarP(&unlockPassword, "password", "p", "", "Vault password (will prompt if not provided)")
}

func runUnlock(cmd *cobra.Command, args []string) error {
	vaultID := args[0]

	password := unlockPassword
	if password == "" {
		var err error
		password, err = promptPassword("Vault password: ")
		if err != nil {
			return err
		}
	}

	record, err := svc.OpenVault(vaultID, password, cryptoengine.WithLogger(logger))
	if err != nil {
		if jsonOutput {
			printJSON(map[string]interface{}{"success": false, "error": err.Error()})
		} else {
			printError("Unlock failed: %v", err)
		}
		return err
	}
	svc.CloseVault(vaultID)

	if jsonOutput {
		printJSON(map[string]interface{}{"success": true, "vault_id": vaultID, "name": record.Name})
		return nil
	}

	printSuccess("Password correct for vault %q", record.Name)
	return nil
}
