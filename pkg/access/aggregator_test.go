package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/gateway-admin/pkg/apierr"
	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
)

func TestGetAccessControl_GatewayGrantInherited(t *testing.T) {
	f := newFixture(t)
	f.credential(t, "tok-A", "shared", "admin@gw1", preference.LevelGateway)
	f.grant(t, preference.ResourceTypeCompute, "res1", "gw1", preference.LevelGateway, "tok-A", "", true)

	view, err := f.aggregator().GetAccessControl(context.Background(), "gw1", "alice@gw1")
	require.NoError(t, err)
	require.Len(t, view.Credentials, 1)

	c := view.Credentials[0]
	assert.Equal(t, "tok-A", c.Token)
	assert.Equal(t, Inherited, c.Ownership)
	assert.Equal(t, preference.LevelGateway, c.Source)
	assert.Equal(t, []ResourceBinding{{ResourceID: "res1"}}, c.ComputeResources)
	assert.Empty(t, c.StorageResources)
}

func TestGetAccessControl_OwnedWinsOverGroup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.groups.AddMember(ctx, "gw1", "physics", "alice@gw1"))
	f.credential(t, "tok-C", "alice-key", "alice@gw1", preference.LevelUser)
	f.grant(t, preference.ResourceTypeCompute, "res1", "physics", preference.LevelGroup, "tok-C", "", true)
	f.grant(t, preference.ResourceTypeCompute, "res2", "gw1", preference.LevelGateway, "tok-C", "", true)

	view, err := f.aggregator().GetAccessControl(ctx, "gw1", "alice@gw1")
	require.NoError(t, err)
	require.Len(t, view.Credentials, 1)
	assert.Equal(t, Owned, view.Credentials[0].Ownership)
	assert.Equal(t, preference.LevelUser, view.Credentials[0].Source)
	assert.Len(t, view.Credentials[0].ComputeResources, 2)
}

func TestGetAccessControl_OwnerIDAloneIsNotOwnership(t *testing.T) {
	f := newFixture(t)
	f.credential(t, "tok-X", "ops-key", "alice@gw1", preference.LevelGateway)
	f.grant(t, preference.ResourceTypeCompute, "res1", "gw1", preference.LevelGateway, "tok-X", "", true)

	view, err := f.aggregator().GetAccessControl(context.Background(), "gw1", "alice@gw1")
	require.NoError(t, err)
	require.Len(t, view.Credentials, 1)
	assert.Equal(t, Inherited, view.Credentials[0].Ownership)
	assert.Equal(t, preference.LevelGateway, view.Credentials[0].Source)
}

func TestGetAccessControl_GroupSourceAndUniqueness(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.groups.AddMember(ctx, "gw1", "physics", "alice@gw1"))
	f.credential(t, "tok-G", "group-key", "physics", preference.LevelGroup)
	f.grant(t, preference.ResourceTypeCompute, "res1", "physics", preference.LevelGroup, "tok-G", "", true)
	f.grant(t, preference.ResourceTypeCompute, "res2", "gw1", preference.LevelGateway, "tok-G", "", true)

	view, err := f.aggregator().GetAccessControl(ctx, "gw1", "alice@gw1")
	require.NoError(t, err)
	require.Len(t, view.Credentials, 1)
	assert.Equal(t, Inherited, view.Credentials[0].Ownership)
	assert.Equal(t, preference.LevelGroup, view.Credentials[0].Source)
}

func TestGetAccessControl_DisabledAndForeignGrantsIgnored(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.groups.AddMember(ctx, "gw1", "chemistry", "bob@gw1"))
	f.credential(t, "tok-A", "a", "gw1", preference.LevelGateway)
	f.credential(t, "tok-B", "b", "chemistry", preference.LevelGroup)
	f.credential(t, "tok-U", "u", "bob@gw1", preference.LevelUser)
	f.grant(t, preference.ResourceTypeCompute, "res1", "gw1", preference.LevelGateway, "tok-A", "", false)
	f.grant(t, preference.ResourceTypeCompute, "res1", "chemistry", preference.LevelGroup, "tok-B", "", true)
	// a user-level grant does not make someone else's credential reachable
	f.grant(t, preference.ResourceTypeCompute, "res2", "alice@gw1", preference.LevelUser, "tok-U", "", true)

	view, err := f.aggregator().GetAccessControl(ctx, "gw1", "alice@gw1")
	require.NoError(t, err)
	assert.NotNil(t, view.Credentials)
	assert.Empty(t, view.Credentials)
}

func TestGetAccessControl_BindingsMostSpecificLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.groups.AddMember(ctx, "gw1", "physics", "alice@gw1"))
	require.NoError(t, f.catalog.UpsertResource(ctx, store.CatalogResource{ResourceType: preference.ResourceTypeCompute, ResourceID: "res1", GatewayID: "gw1", Name: "Cluster One"}))
	require.NoError(t, f.catalog.UpsertResource(ctx, store.CatalogResource{ResourceType: preference.ResourceTypeStorage, ResourceID: "scratch", GatewayID: "gw1", Name: "Scratch"}))
	f.credential(t, "tok-A", "shared", "gw1", preference.LevelGateway)

	f.grant(t, preference.ResourceTypeCompute, "res1", "gw1", preference.LevelGateway, "tok-A", "svc", true)
	f.grant(t, preference.ResourceTypeCompute, "res1", "physics", preference.LevelGroup, "tok-A", "phys", true)
	f.grant(t, preference.ResourceTypeCompute, "res1", "alice@gw1", preference.LevelUser, "tok-A", "alice", true)
	f.grant(t, preference.ResourceTypeStorage, "scratch", "gw1", preference.LevelGateway, "tok-A", "svc", true)

	view, err := f.aggregator().GetAccessControl(ctx, "gw1", "alice@gw1")
	require.NoError(t, err)
	require.Len(t, view.Credentials, 1)
	c := view.Credentials[0]
	assert.Equal(t, "shared", c.Name)
	assert.Equal(t, "shared-user", c.Username)
	assert.Equal(t, preference.LevelGroup, c.Source)
	assert.Equal(t, []ResourceBinding{{ResourceID: "res1", ResourceName: "Cluster One", LoginUsername: "alice"}}, c.ComputeResources)
	assert.Equal(t, []ResourceBinding{{ResourceID: "scratch", ResourceName: "Scratch", LoginUsername: "svc"}}, c.StorageResources)

	// the gateway view only sees gateway grants
	view, err = f.aggregator().GetAccessControl(ctx, "gw1", "")
	require.NoError(t, err)
	require.Len(t, view.Credentials, 1)
	assert.Equal(t, preference.LevelGateway, view.Credentials[0].Source)
	assert.Equal(t, "svc", view.Credentials[0].ComputeResources[0].LoginUsername)
}

func TestGetAccessControl_Ordering(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.credential(t, "tok-1", "zeta", "alice@gw1", preference.LevelUser)
	f.credential(t, "tok-2", "alpha", "gw1", preference.LevelGateway)
	f.credential(t, "tok-3", "beta", "gw1", preference.LevelGateway)
	f.credential(t, "tok-0", "beta", "gw1", preference.LevelGateway)
	f.grant(t, preference.ResourceTypeCompute, "r1", "gw1", preference.LevelGateway, "tok-3", "", true)
	f.grant(t, preference.ResourceTypeCompute, "r2", "gw1", preference.LevelGateway, "tok-2", "", true)
	f.grant(t, preference.ResourceTypeCompute, "r3", "gw1", preference.LevelGateway, "tok-0", "", true)

	view, err := f.aggregator().GetAccessControl(ctx, "gw1", "alice@gw1")
	require.NoError(t, err)
	var tokens []string
	for _, c := range view.Credentials {
		tokens = append(tokens, c.Token)
	}
	assert.Equal(t, []string{"tok-1", "tok-2", "tok-0", "tok-3"}, tokens)
}

func TestGetAccessControl_RequiresGateway(t *testing.T) {
	_, err := newFixture(t).aggregator().GetAccessControl(context.Background(), "", "alice@gw1")
	var verr *apierr.ValidationError
	assert.ErrorAs(t, err, &verr)
}
