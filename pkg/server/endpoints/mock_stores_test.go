package endpoints

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
)

// MockPreferencesStore implements store.PreferencesStore for testing using testify/mock
type MockPreferencesStore struct {
	mock.Mock
}

func (m *MockPreferencesStore) SetPreference(ctx context.Context, scope store.PreferenceScope, key, value string, enforced bool) error {
	args := m.Called(ctx, scope, key, value, enforced)
	return args.Error(0)
}

func (m *MockPreferencesStore) GetPreferencesAtLevel(ctx context.Context, scope store.PreferenceScope) (map[string]string, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockPreferencesStore) GetPreferencesAtLevelDetailed(ctx context.Context, scope store.PreferenceScope) ([]store.PreferenceEntry, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.PreferenceEntry), args.Error(1)
}

func (m *MockPreferencesStore) DeletePreference(ctx context.Context, scope store.PreferenceScope, key string) error {
	args := m.Called(ctx, scope, key)
	return args.Error(0)
}

func (m *MockPreferencesStore) DeleteAllPreferences(ctx context.Context, scope store.PreferenceScope) error {
	args := m.Called(ctx, scope)
	return args.Error(0)
}

// MockAccessGrantsStore implements store.AccessGrantsStore for testing using testify/mock
type MockAccessGrantsStore struct {
	mock.Mock
}

func (m *MockAccessGrantsStore) CreateAccessGrant(ctx context.Context, grant *store.AccessGrant) error {
	args := m.Called(ctx, grant)
	return args.Error(0)
}

func (m *MockAccessGrantsStore) GetAccessGrant(ctx context.Context, id int64) (*store.AccessGrant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.AccessGrant), args.Error(1)
}

func (m *MockAccessGrantsStore) UpdateAccessGrant(ctx context.Context, id int64, patch store.AccessGrantPatch) (*store.AccessGrant, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.AccessGrant), args.Error(1)
}

func (m *MockAccessGrantsStore) DeleteAccessGrant(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccessGrantsStore) ListAccessGrants(ctx context.Context, filter store.AccessGrantFilter) ([]store.AccessGrant, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.AccessGrant), args.Error(1)
}

// MockCredentialsStore implements store.CredentialsStore for testing using testify/mock
type MockCredentialsStore struct {
	mock.Mock
}

func (m *MockCredentialsStore) CreateCredential(ctx context.Context, cred *store.Credential, secret []byte) error {
	args := m.Called(ctx, cred, secret)
	return args.Error(0)
}

func (m *MockCredentialsStore) GetCredential(ctx context.Context, token string) (*store.Credential, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Credential), args.Error(1)
}

func (m *MockCredentialsStore) GetCredentials(ctx context.Context, tokens []string) ([]store.Credential, error) {
	args := m.Called(ctx, tokens)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Credential), args.Error(1)
}

func (m *MockCredentialsStore) ListCredentials(ctx context.Context, gatewayID, ownerID string) ([]store.Credential, error) {
	args := m.Called(ctx, gatewayID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Credential), args.Error(1)
}

func (m *MockCredentialsStore) ListUserCredentials(ctx context.Context, gatewayID, userID string) ([]store.Credential, error) {
	args := m.Called(ctx, gatewayID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Credential), args.Error(1)
}

func (m *MockCredentialsStore) DeleteCredential(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockGroupsStore implements store.GroupsStore for testing using testify/mock
type MockGroupsStore struct {
	mock.Mock
}

func (m *MockGroupsStore) GroupsForUser(ctx context.Context, gatewayID, userID string) ([]string, error) {
	args := m.Called(ctx, gatewayID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockGroupsStore) AddMember(ctx context.Context, gatewayID, groupID, userID string) error {
	args := m.Called(ctx, gatewayID, groupID, userID)
	return args.Error(0)
}

func (m *MockGroupsStore) RemoveMember(ctx context.Context, gatewayID, groupID, userID string) error {
	args := m.Called(ctx, gatewayID, groupID, userID)
	return args.Error(0)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func (m *MockHealthStore) CheckConnectivity(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func scope(rt preference.ResourceType, resourceID string, level preference.Level, ownerID string) store.PreferenceScope {
	return store.PreferenceScope{
		ResourceType: rt,
		ResourceID:   resourceID,
		OwnerID:      ownerID,
		Level:        level,
	}
}
