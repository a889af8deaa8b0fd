package main

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered vaults",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	records, err := svc.ListVaults()
	if err != nil {
		printError("Failed to list vaults: %v", err)
		return err
	}

	if jsonOutput {
		printJSON(records)
		return nil
	}

	if len(records) == 0 {
		printInfo("No vaults registered.")
		return nil
	}

	for _, record := range records {
		printInfo("%s  %-30s %s", record.ID, record.Name, record.Path)
	}
	return nil
}
