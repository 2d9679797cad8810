package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/gateway-admin/pkg/audit"
	"github.com/doodlesbykumbi/gateway-admin/pkg/bundle"
	"github.com/doodlesbykumbi/gateway-admin/pkg/db"
	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
	"github.com/doodlesbykumbi/gateway-admin/pkg/resolver"
	"github.com/doodlesbykumbi/gateway-admin/pkg/secretbox"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/gateway-admin/pkg/server/store/gorm"
)

func init() {
	audit.SetEnabled(false)
}

func TestCommandTree(t *testing.T) {
	paths := [][]string{
		{"server"},
		{"wait"},
		{"token"},
		{"access-control"},
		{"db", "migrate"},
		{"db", "down"},
		{"db", "status"},
		{"configuration", "show"},
		{"configuration", "apply"},
		{"data-key", "generate"},
		{"preferences", "load"},
		{"preferences", "watch"},
		{"preferences", "resolve"},
	}
	for _, path := range paths {
		cmd, rest, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Empty(t, rest, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestRemoteFlags(t *testing.T) {
	for _, name := range [][]string{{"access-control"}, {"preferences", "resolve"}} {
		cmd, _, err := rootCmd.Find(name)
		require.NoError(t, err)
		assert.NotNil(t, cmd.Flags().Lookup("url"), name)
		assert.NotNil(t, cmd.Flags().Lookup("token"), name)
	}
}

func newTestStores(t *testing.T) (bundle.Stores, store.PreferencesStore) {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	key, err := secretbox.RandomBytes(32)
	require.NoError(t, err)
	cipher, err := secretbox.NewSymmetric(key)
	require.NoError(t, err)

	prefs := gormstore.NewPreferencesStore(database)
	return bundle.Stores{
		Preferences: prefs,
		Grants:      gormstore.NewAccessGrantsStore(database),
		Credentials: gormstore.NewCredentialsStore(database, cipher),
		Catalog:     gormstore.NewCatalogStore(database),
		Groups:      gormstore.NewGroupsStore(database),
	}, prefs
}

func TestLoadBundleFile(t *testing.T) {
	stores, prefs := newTestStores(t)

	path := filepath.Join(t.TempDir(), "gateway.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
gateway: gw1
preferences:
  - {resourceType: COMPUTE, resourceId: res1, level: GATEWAY, ownerId: gw1, key: maxWallTime, value: "60", enforced: true}
  - {resourceType: COMPUTE, resourceId: res1, level: USER, ownerId: alice@gw1, key: maxWallTime, value: "120"}
`), 0o600))

	result, err := loadBundleFile(bundle.NewLoader(stores).WithStrictKeys(true), path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Preferences)

	resolved, err := resolver.New(prefs).Resolve(context.Background(), resolver.Query{
		ResourceType: preference.ResourceTypeCompute,
		ResourceID:   "res1",
		GatewayID:    "gw1",
		UserID:       "alice@gw1",
	})
	require.NoError(t, err)
	assert.Equal(t, resolver.ResolvedPreferences{"maxWallTime": "60"}, resolved)
}

func TestLoadBundleFileMissing(t *testing.T) {
	stores, _ := newTestStores(t)

	_, err := loadBundleFile(bundle.NewLoader(stores), filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open bundle file")
}
