package main

import (
	"context"
	"fmt"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/gateway-admin/pkg/bundle"
	"github.com/doodlesbykumbi/gateway-admin/pkg/config"
	"github.com/doodlesbykumbi/gateway-admin/pkg/db"
	"github.com/doodlesbykumbi/gateway-admin/pkg/secretbox"
	gormstore "github.com/doodlesbykumbi/gateway-admin/pkg/server/store/gorm"
)

// preferencesLoadCmd represents the preferences load command
var preferencesLoadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Load a bundle file",
	Long: `Load a YAML bundle into the database.

A bundle seeds one gateway's resource catalog, group memberships,
credentials, preferences and access grants. Existing preferences are
overwritten and existing grants are updated in place; nothing is deleted.

Example:
  gatewayctl preferences load gateway.yml
  gatewayctl preferences load --dry-run gateway.yml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		loader, err := newBundleLoader()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load bundle: %v\n", err)
			os.Exit(1)
		}

		result, err := loadBundleFile(loader.WithDryRun(dryRun), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load bundle: %v\n", err)
			os.Exit(1)
		}
		printJSON(result)
	},
}

func init() {
	preferencesCmd.AddCommand(preferencesLoadCmd)
	preferencesLoadCmd.Flags().Bool("dry-run", false, "validate the bundle without writing")
}

func newBundleLoader() (*bundle.Loader, error) {
	cipher, err := secretbox.NewSymmetricFromEnv()
	if err != nil {
		return nil, err
	}
	database, err := db.Connect(db.Config{})
	if err != nil {
		return nil, err
	}

	loader := bundle.NewLoader(bundle.Stores{
		Preferences: gormstore.NewPreferencesStore(database),
		Grants:      gormstore.NewAccessGrantsStore(database),
		Credentials: gormstore.NewCredentialsStore(database, cipher),
		Catalog:     gormstore.NewCatalogStore(database),
		Groups:      gormstore.NewGroupsStore(database),
	})
	if u, err := user.Current(); err == nil {
		loader.WithUserID(u.Username)
	}
	return loader.WithStrictKeys(config.Get().StrictPreferenceKeys), nil
}

func loadBundleFile(loader *bundle.Loader, filename string) (*bundle.Result, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return loader.WithPath(filename).LoadFromReader(context.Background(), file)
}
