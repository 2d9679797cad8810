package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// preferencesCmd represents the preferences command
var preferencesCmd = &cobra.Command{
	Use:   "preferences",
	Short: "Manage preferences and bundles",
	Long:  `Load preference bundles into the database and resolve preferences against a running server.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'preferences' requires a subcommand (load, watch, resolve)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(preferencesCmd)
}
