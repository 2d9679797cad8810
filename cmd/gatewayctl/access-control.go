package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// accessControlCmd represents the access-control command
var accessControlCmd = &cobra.Command{
	Use:   "access-control",
	Short: "Show the credentials a user can reach on a gateway",
	Long: `Ask a running server for the access control view of a gateway: the
credentials the user owns or inherits, and the resources each one is bound to.

Example:
  gatewayctl access-control --gateway gw1 --user alice@gw1`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := showAccessControl(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to get access control: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(accessControlCmd)
	addRemoteFlags(accessControlCmd)
	accessControlCmd.Flags().StringP("gateway", "g", "", "gateway id")
	accessControlCmd.Flags().StringP("user", "u", "", "user id (omit for the gateway view)")
	_ = accessControlCmd.MarkFlagRequired("gateway")
}

func showAccessControl(cmd *cobra.Command) error {
	gatewayID, _ := cmd.Flags().GetString("gateway")
	userID, _ := cmd.Flags().GetString("user")

	c, err := remoteClient(cmd)
	if err != nil {
		return err
	}
	view, err := c.GetAccessControl(context.Background(), gatewayID, userID)
	if err != nil {
		return err
	}
	printJSON(view)
	return nil
}
