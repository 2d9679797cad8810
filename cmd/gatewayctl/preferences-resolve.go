package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
	"github.com/doodlesbykumbi/gateway-admin/pkg/resolver"
)

// preferencesResolveCmd represents the preferences resolve command
var preferencesResolveCmd = &cobra.Command{
	Use:   "resolve <COMPUTE|STORAGE> <resourceId>",
	Short: "Resolve the effective preferences of a user on a resource",
	Long: `Ask a running server for the effective preferences of a user on a resource.

Example:
  gatewayctl preferences resolve COMPUTE res1 --gateway gw1 --user alice@gw1 --groups admins
  gatewayctl preferences resolve STORAGE st1 --gateway gw1 --sources`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := resolvePreferences(cmd, args[0], args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to resolve preferences: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	preferencesCmd.AddCommand(preferencesResolveCmd)
	addRemoteFlags(preferencesResolveCmd)
	preferencesResolveCmd.Flags().StringP("gateway", "g", "", "gateway id")
	preferencesResolveCmd.Flags().StringP("user", "u", "", "user id")
	preferencesResolveCmd.Flags().StringSlice("groups", nil, "group ids, most relevant first")
	preferencesResolveCmd.Flags().Bool("sources", false, "also show the level each value came from")
	_ = preferencesResolveCmd.MarkFlagRequired("gateway")
}

func resolvePreferences(cmd *cobra.Command, resourceType, resourceID string) error {
	rt, err := preference.ParseResourceType(resourceType)
	if err != nil {
		return fmt.Errorf("unknown resource type %q", resourceType)
	}
	gatewayID, _ := cmd.Flags().GetString("gateway")
	userID, _ := cmd.Flags().GetString("user")
	groups, _ := cmd.Flags().GetStringSlice("groups")
	withSources, _ := cmd.Flags().GetBool("sources")

	c, err := remoteClient(cmd)
	if err != nil {
		return err
	}

	q := resolver.Query{
		ResourceType: rt,
		ResourceID:   resourceID,
		GatewayID:    gatewayID,
		UserID:       userID,
		GroupIDs:     groups,
	}
	if withSources {
		res, err := c.ResolveWithSources(context.Background(), q)
		if err != nil {
			return err
		}
		printJSON(res)
		return nil
	}

	prefs, err := c.Resolve(context.Background(), q)
	if err != nil {
		return err
	}
	printJSON(prefs)
	return nil
}
