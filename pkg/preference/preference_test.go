package preference

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLevelOrdering(t *testing.T) {
	assert.True(t, LevelUser.MoreSpecificThan(LevelGroup))
	assert.True(t, LevelGroup.MoreSpecificThan(LevelGateway))
	assert.True(t, LevelUser.MoreSpecificThan(LevelGateway))
	assert.False(t, LevelGateway.MoreSpecificThan(LevelGroup))
	assert.False(t, LevelGroup.MoreSpecificThan(LevelGroup))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"GATEWAY", LevelGateway, false},
		{"group", LevelGroup, false},
		{"User", LevelUser, false},
		{"TENANT", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResourceTypeJSON(t *testing.T) {
	var payload struct {
		Type  ResourceType `json:"resourceType"`
		Level Level        `json:"level"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"resourceType":"STORAGE","level":"GROUP"}`), &payload))
	assert.Equal(t, ResourceTypeStorage, payload.Type)
	assert.Equal(t, LevelGroup, payload.Level)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"resourceType":"STORAGE","level":"GROUP"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"resourceType":"NETWORK"}`), &payload))
}

func TestLevelYAML(t *testing.T) {
	var doc struct {
		Level Level `yaml:"level"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("level: user\n"), &doc))
	assert.Equal(t, LevelUser, doc.Level)
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey(ResourceTypeCompute, "maxWallTime"))
	assert.NoError(t, ValidateKey(ResourceTypeStorage, "fileSystemRootLocation"))

	err := ValidateKey(ResourceTypeStorage, "maxWallTime")
	var unknown *UnknownKeyError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "maxWallTime", unknown.Key)
	assert.Contains(t, err.Error(), "STORAGE")
}

func TestKeysForIsSorted(t *testing.T) {
	keys := KeysFor(ResourceTypeStorage)
	assert.Equal(t, []string{"fileSystemRootLocation", "loginUserName", "maxStorageQuota", "resourceSpecificCredentialStoreToken"}, keys)
	assert.Len(t, KeysFor(ResourceTypeCompute), len(ComputeKeys))
}
