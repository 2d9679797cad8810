package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gatewayctl",
	Short: "Gateway administration server and tools",
	Long: `gatewayctl runs the gateway administration API and manages its database,
configuration, preference bundles and access grants.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
