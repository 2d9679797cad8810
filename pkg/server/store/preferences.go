package store

import (
	"context"

	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
)

// PreferenceScope addresses every record at one exact level for one resource.
type PreferenceScope struct {
	ResourceType preference.ResourceType
	ResourceID   string
	OwnerID      string
	Level        preference.Level
}

// PreferenceEntry is a single record with its enforced flag.
type PreferenceEntry struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Enforced bool   `json:"enforced"`
}

// PreferencesStore abstracts preference storage. Keys are arbitrary strings;
// validating them against a resource type's key set is the caller's job.
type PreferencesStore interface {
	// SetPreference inserts or overwrites the record for (scope, key).
	SetPreference(ctx context.Context, scope PreferenceScope, key, value string, enforced bool) error

	// GetPreferencesAtLevel returns only the keys explicitly set in scope.
	GetPreferencesAtLevel(ctx context.Context, scope PreferenceScope) (map[string]string, error)

	// GetPreferencesAtLevelDetailed is GetPreferencesAtLevel with the enforced
	// flag, ordered by key.
	GetPreferencesAtLevelDetailed(ctx context.Context, scope PreferenceScope) ([]PreferenceEntry, error)

	// DeletePreference removes one record. Deleting a missing key is not an error.
	DeletePreference(ctx context.Context, scope PreferenceScope, key string) error

	// DeleteAllPreferences removes every record in scope and nothing else.
	DeleteAllPreferences(ctx context.Context, scope PreferenceScope) error
}
