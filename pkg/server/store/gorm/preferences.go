package gorm

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/doodlesbykumbi/gateway-admin/pkg/model"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
)

// Ensure PreferencesStore implements store.PreferencesStore
var _ store.PreferencesStore = (*PreferencesStore)(nil)

var preferenceConflictColumns = []clause.Column{
	{Name: "resource_type"},
	{Name: "resource_id"},
	{Name: "owner_id"},
	{Name: "level"},
	{Name: "pref_key"},
}

// PreferencesStore implements store.PreferencesStore using GORM
type PreferencesStore struct {
	db *gorm.DB
}

// NewPreferencesStore creates a new PreferencesStore
func NewPreferencesStore(db *gorm.DB) *PreferencesStore {
	return &PreferencesStore{db: db}
}

func scopeQuery(scope store.PreferenceScope) map[string]interface{} {
	return map[string]interface{}{
		"resource_type": scope.ResourceType.String(),
		"resource_id":   scope.ResourceID,
		"owner_id":      scope.OwnerID,
		"level":         scope.Level.String(),
	}
}

// SetPreference upserts a single record.
func (s *PreferencesStore) SetPreference(ctx context.Context, scope store.PreferenceScope, key, value string, enforced bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row := model.Preference{
		ResourceType: scope.ResourceType.String(),
		ResourceID:   scope.ResourceID,
		OwnerID:      scope.OwnerID,
		Level:        scope.Level.String(),
		Key:          key,
		Value:        value,
		Enforced:     enforced,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   preferenceConflictColumns,
		DoUpdates: clause.AssignmentColumns([]string{"value", "enforced", "updated_at"}),
	}).Create(&row).Error
}

// GetPreferencesAtLevel returns the raw key/value pairs set in scope.
func (s *PreferencesStore) GetPreferencesAtLevel(ctx context.Context, scope store.PreferenceScope) (map[string]string, error) {
	entries, err := s.GetPreferencesAtLevelDetailed(ctx, scope)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Key] = e.Value
	}
	return out, nil
}

// GetPreferencesAtLevelDetailed returns the records in scope ordered by key.
func (s *PreferencesStore) GetPreferencesAtLevelDetailed(ctx context.Context, scope store.PreferenceScope) ([]store.PreferenceEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rows []model.Preference
	if err := s.db.WithContext(ctx).Where(scopeQuery(scope)).Order("pref_key").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]store.PreferenceEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, store.PreferenceEntry{Key: r.Key, Value: r.Value, Enforced: r.Enforced})
	}
	return out, nil
}

// DeletePreference removes one record if present.
func (s *PreferencesStore) DeletePreference(ctx context.Context, scope store.PreferenceScope, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Where(scopeQuery(scope)).
		Where("pref_key = ?", key).
		Delete(&model.Preference{}).Error
}

// DeleteAllPreferences removes every record in scope.
func (s *PreferencesStore) DeleteAllPreferences(ctx context.Context, scope store.PreferenceScope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Where(scopeQuery(scope)).Delete(&model.Preference{}).Error
}
