package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/gateway-admin/pkg/apierr"
	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/gateway-admin/pkg/server/store/gorm"
)

func validRequest() AccessGrantRequest {
	return AccessGrantRequest{
		ResourceType:    "COMPUTE",
		ResourceID:      "res1",
		OwnerID:         "gw1",
		OwnerType:       "GATEWAY",
		GatewayID:       "gw1",
		CredentialToken: "tok-A",
	}
}

func TestCreateAccessGrant_DefaultsEnabled(t *testing.T) {
	f := newFixture(t)
	f.credential(t, "tok-A", "shared", "gw1", preference.LevelGateway)

	grant, err := f.registry().CreateAccessGrant(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotZero(t, grant.ID)
	assert.True(t, grant.Enabled)
	assert.Equal(t, preference.LevelGateway, grant.OwnerType)
}

func TestCreateAccessGrant_RequiresCredentialToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.registry()

	for _, token := range []string{"", "   "} {
		req := validRequest()
		req.CredentialToken = token
		_, err := r.CreateAccessGrant(ctx, req)

		var verr *apierr.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"credentialToken"}, verr.Fields)
	}

	grants, err := r.GetAccessGrants(ctx, preference.ResourceTypeCompute, "res1")
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestCreateAccessGrant_Validation(t *testing.T) {
	r := newFixture(t).registry()
	ctx := context.Background()

	_, err := r.CreateAccessGrant(ctx, AccessGrantRequest{})
	var verr *apierr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"resourceType", "resourceId", "ownerId", "ownerType", "gatewayId", "credentialToken"}, verr.Fields)

	req := validRequest()
	req.ResourceType = "TAPE"
	_, err = r.CreateAccessGrant(ctx, req)
	assert.ErrorAs(t, err, &verr)

	req = validRequest()
	req.OwnerType = "ROLE"
	_, err = r.CreateAccessGrant(ctx, req)
	assert.ErrorAs(t, err, &verr)

	// credential must exist in the catalog
	_, err = r.CreateAccessGrant(ctx, validRequest())
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"credentialToken"}, verr.Fields)
}

func TestCreateAccessGrant_DuplicateConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.credential(t, "tok-A", "a", "gw1", preference.LevelGateway)
	f.credential(t, "tok-B", "b", "gw1", preference.LevelGateway)
	r := f.registry()

	_, err := r.CreateAccessGrant(ctx, validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.CredentialToken = "tok-B"
	_, err = r.CreateAccessGrant(ctx, req)
	var cerr *apierr.ConflictError
	assert.ErrorAs(t, err, &cerr)

	grants, err := r.GetAccessGrants(ctx, preference.ResourceTypeCompute, "res1")
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, "tok-A", grants[0].CredentialToken)
}

func TestUpdateAccessGrant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.credential(t, "tok-A", "a", "gw1", preference.LevelGateway)
	f.credential(t, "tok-B", "b", "gw1", preference.LevelGateway)
	r := f.registry()
	grant := f.grant(t, preference.ResourceTypeCompute, "res1", "gw1", preference.LevelGateway, "tok-A", "", true)

	off := false
	updated, err := r.UpdateAccessGrant(ctx, grant.ID, store.AccessGrantPatch{Enabled: &off})
	require.NoError(t, err)
	assert.False(t, updated.Enabled)
	assert.Equal(t, "tok-A", updated.CredentialToken)

	on := true
	login := "svc"
	token := "tok-B"
	updated, err = r.UpdateAccessGrant(ctx, grant.ID, store.AccessGrantPatch{Enabled: &on, LoginUsername: &login, CredentialToken: &token})
	require.NoError(t, err)
	assert.True(t, updated.Enabled)
	assert.Equal(t, "svc", updated.LoginUsername)
	assert.Equal(t, "tok-B", updated.CredentialToken)

	empty := ""
	_, err = r.UpdateAccessGrant(ctx, grant.ID, store.AccessGrantPatch{CredentialToken: &empty})
	var verr *apierr.ValidationError
	assert.ErrorAs(t, err, &verr)

	missing := "tok-Z"
	_, err = r.UpdateAccessGrant(ctx, grant.ID, store.AccessGrantPatch{CredentialToken: &missing})
	assert.ErrorAs(t, err, &verr)

	_, err = r.UpdateAccessGrant(ctx, 999, store.AccessGrantPatch{Enabled: &on})
	var nerr *apierr.NotFoundError
	assert.ErrorAs(t, err, &nerr)
}

func TestDeleteAccessGrant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.credential(t, "tok-A", "a", "gw1", preference.LevelGateway)
	r := f.registry()
	grant := f.grant(t, preference.ResourceTypeCompute, "res1", "gw1", preference.LevelGateway, "tok-A", "", true)

	require.NoError(t, r.DeleteAccessGrant(ctx, grant.ID))

	var nerr *apierr.NotFoundError
	assert.ErrorAs(t, r.DeleteAccessGrant(ctx, grant.ID), &nerr)
	_, err := r.GetAccessGrant(ctx, grant.ID)
	assert.ErrorAs(t, err, &nerr)
}

func TestLookupViews(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.credential(t, "tok-A", "a", "gw1", preference.LevelGateway)
	r := f.registry()

	g1 := f.grant(t, preference.ResourceTypeCompute, "res1", "gw1", preference.LevelGateway, "tok-A", "", true)
	g2 := f.grant(t, preference.ResourceTypeCompute, "res1", "physics", preference.LevelGroup, "tok-A", "", false)
	g3 := f.grant(t, preference.ResourceTypeStorage, "scratch", "physics", preference.LevelGroup, "tok-A", "", true)

	all, err := r.GetAccessGrants(ctx, preference.ResourceTypeCompute, "res1")
	require.NoError(t, err)
	assert.Equal(t, []int64{g1.ID, g2.ID}, ids(all))

	enabled, err := r.GetEnabledAccessGrants(ctx, preference.ResourceTypeCompute, "res1")
	require.NoError(t, err)
	assert.Equal(t, []int64{g1.ID}, ids(enabled))
	for _, g := range enabled {
		assert.True(t, g.Enabled)
	}

	byType, err := r.GetAccessGrantsByType(ctx, "gw1", preference.ResourceTypeStorage)
	require.NoError(t, err)
	assert.Equal(t, []int64{g3.ID}, ids(byType))

	byOwner, err := r.GetAccessGrantsByOwner(ctx, "physics", preference.LevelGroup)
	require.NoError(t, err)
	assert.Equal(t, []int64{g2.ID, g3.ID}, ids(byOwner))

	_, err = r.GetAccessGrants(ctx, preference.ResourceTypeCompute, "")
	var verr *apierr.ValidationError
	assert.ErrorAs(t, err, &verr)
}

type mockGrantsStore struct {
	store.AccessGrantsStore
	mock.Mock
}

func (m *mockGrantsStore) ListAccessGrants(ctx context.Context, filter store.AccessGrantFilter) ([]store.AccessGrant, error) {
	args := m.Called(ctx, filter)
	grants, _ := args.Get(0).([]store.AccessGrant)
	return grants, args.Error(1)
}

func (m *mockGrantsStore) CreateAccessGrant(ctx context.Context, grant *store.AccessGrant) error {
	return m.Called(ctx, grant).Error(0)
}

func TestGetEnabledAccessGrants_NeverReturnsDisabled(t *testing.T) {
	m := &mockGrantsStore{}
	m.On("ListAccessGrants", mock.Anything, mock.Anything).Return([]store.AccessGrant{
		{ID: 1, Enabled: true},
		{ID: 2, Enabled: false},
		{ID: 3, Enabled: true},
	}, nil)

	grants, err := NewRegistry(m, nil).GetEnabledAccessGrants(context.Background(), preference.ResourceTypeCompute, "res1")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(grants))
}

func TestCreateAccessGrant_StoreErrorPropagates(t *testing.T) {
	m := &mockGrantsStore{}
	boom := errors.New("connection refused")
	m.On("CreateAccessGrant", mock.Anything, mock.Anything).Return(boom)

	_, err := NewRegistry(m, nil).CreateAccessGrant(context.Background(), validRequest())
	assert.ErrorIs(t, err, boom)
}

func ids(grants []store.AccessGrant) []int64 {
	out := make([]int64, 0, len(grants))
	for _, g := range grants {
		out = append(out, g.ID)
	}
	return out
}

// vanishingCredentials deletes each credential right after reporting it.
type vanishingCredentials struct {
	*gormstore.CredentialsStore
}

func (v vanishingCredentials) GetCredential(ctx context.Context, token string) (*store.Credential, error) {
	cred, err := v.CredentialsStore.GetCredential(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := v.CredentialsStore.DeleteCredential(ctx, token); err != nil {
		return nil, err
	}
	return cred, nil
}

func TestCreateAccessGrant_CredentialDeletedAfterCheck(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.credential(t, "tok-A", "shared", "gw1", preference.LevelGateway)
	r := NewRegistry(f.grants, vanishingCredentials{f.credentials})

	_, err := r.CreateAccessGrant(ctx, validRequest())
	var verr *apierr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"credentialToken"}, verr.Fields)

	grants, err := f.registry().GetAccessGrants(ctx, preference.ResourceTypeCompute, "res1")
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestUpdateAccessGrant_CredentialDeletedAfterCheck(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.credential(t, "tok-A", "first", "gw1", preference.LevelGateway)
	f.credential(t, "tok-B", "second", "gw1", preference.LevelGateway)
	grant := f.grant(t, preference.ResourceTypeCompute, "res1", "gw1", preference.LevelGateway, "tok-A", "", true)
	r := NewRegistry(f.grants, vanishingCredentials{f.credentials})

	token := "tok-B"
	_, err := r.UpdateAccessGrant(ctx, grant.ID, store.AccessGrantPatch{CredentialToken: &token})
	var verr *apierr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"credentialToken"}, verr.Fields)

	got, err := f.registry().GetAccessGrant(ctx, grant.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok-A", got.CredentialToken)
}
