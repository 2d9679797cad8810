package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/gateway-admin/pkg/db"
	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/gateway-admin/pkg/server/store/gorm"
)

type fixture struct {
	grants      *gormstore.AccessGrantsStore
	credentials *gormstore.CredentialsStore
	groups      *gormstore.GroupsStore
	catalog     *gormstore.CatalogStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	return &fixture{
		grants:      gormstore.NewAccessGrantsStore(database),
		credentials: gormstore.NewCredentialsStore(database, nil),
		groups:      gormstore.NewGroupsStore(database),
		catalog:     gormstore.NewCatalogStore(database),
	}
}

func (f *fixture) registry() *Registry {
	return NewRegistry(f.grants, f.credentials)
}

func (f *fixture) aggregator() *Aggregator {
	return NewAggregator(f.grants, f.credentials, f.groups, f.catalog)
}

func (f *fixture) credential(t *testing.T, token, name, owner string, ownerType preference.Level) {
	t.Helper()
	require.NoError(t, f.credentials.CreateCredential(context.Background(), &store.Credential{
		Token:     token,
		GatewayID: "gw1",
		OwnerID:   owner,
		OwnerType: ownerType,
		Name:      name,
		Username:  name + "-user",
		Type:      store.CredentialTypeSSH,
	}, nil))
}

func (f *fixture) grant(t *testing.T, rt preference.ResourceType, resourceID, owner string, ownerType preference.Level, token, login string, enabled bool) *store.AccessGrant {
	t.Helper()
	g, err := f.registry().CreateAccessGrant(context.Background(), AccessGrantRequest{
		ResourceType:    rt.String(),
		ResourceID:      resourceID,
		OwnerID:         owner,
		OwnerType:       ownerType.String(),
		GatewayID:       "gw1",
		CredentialToken: token,
		LoginUsername:   login,
		Enabled:         &enabled,
	})
	require.NoError(t, err)
	return g
}
