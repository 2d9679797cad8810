package resolver

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/doodlesbykumbi/gateway-admin/pkg/apierr"
	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
)

// Query identifies a resource and the requester whose view is resolved.
type Query struct {
	ResourceType preference.ResourceType
	ResourceID   string
	GatewayID    string
	UserID       string
	GroupIDs     []string
}

// Validate reports missing required fields.
func (q Query) Validate() error {
	var missing []string
	if q.ResourceID == "" {
		missing = append(missing, "resourceId")
	}
	if q.GatewayID == "" {
		missing = append(missing, "gatewayId")
	}
	if len(missing) > 0 {
		return apierr.Validation(missing...)
	}
	return nil
}

// ResolvedPreferences is the flat effective key to value map.
type ResolvedPreferences map[string]string

// Resolution is a resolved map together with the level each value came from.
type Resolution struct {
	Preferences ResolvedPreferences
	Sources     map[string]preference.Level
}

// Resolver merges per-level records from a PreferencesStore.
type Resolver struct {
	store store.PreferencesStore
}

func New(s store.PreferencesStore) *Resolver {
	return &Resolver{store: s}
}

// Resolve returns the effective value of every key set at any level. A
// resource with no records resolves to an empty map.
func (r *Resolver) Resolve(ctx context.Context, q Query) (ResolvedPreferences, error) {
	res, err := r.ResolveDetailed(ctx, q)
	if err != nil {
		return nil, err
	}
	return res.Preferences, nil
}

// ResolveDetailed is Resolve plus the winning level of each key.
func (r *Resolver) ResolveDetailed(ctx context.Context, q Query) (*Resolution, error) {
	levels, err := r.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	res := levels.Merge()
	log.WithFields(log.Fields{
		"resourceType": q.ResourceType,
		"resourceId":   q.ResourceID,
		"gatewayId":    q.GatewayID,
		"userId":       q.UserID,
		"groups":       len(levels.Groups),
		"keys":         len(res.Preferences),
	}).Debug("resolved preferences")
	return res, nil
}

// Sources resolves q and attributes each key with ComputeSourceMap, as seen
// by an editor working at ownLevel.
func (r *Resolver) Sources(ctx context.Context, q Query, ownLevel preference.Level) (map[string]preference.Level, error) {
	levels, err := r.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	return ComputeSourceMap(levels.Merge().Preferences, levels, ownLevel), nil
}

// Fetch loads the raw records for every level involved in q.
func (r *Resolver) Fetch(ctx context.Context, q Query) (*Levels, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	scope := store.PreferenceScope{
		ResourceType: q.ResourceType,
		ResourceID:   q.ResourceID,
	}

	levels := &Levels{}

	scope.Level, scope.OwnerID = preference.LevelGateway, q.GatewayID
	gateway, err := r.store.GetPreferencesAtLevelDetailed(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("fetching gateway preferences: %w", err)
	}
	levels.Gateway = NewLevelRecords(q.GatewayID, gateway)

	scope.Level = preference.LevelGroup
	for _, groupID := range dedupe(q.GroupIDs) {
		scope.OwnerID = groupID
		entries, err := r.store.GetPreferencesAtLevelDetailed(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("fetching preferences for group %s: %w", groupID, err)
		}
		levels.Groups = append(levels.Groups, NewLevelRecords(groupID, entries))
	}

	if q.UserID != "" {
		scope.Level, scope.OwnerID = preference.LevelUser, q.UserID
		entries, err := r.store.GetPreferencesAtLevelDetailed(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("fetching user preferences: %w", err)
		}
		levels.User = NewLevelRecords(q.UserID, entries)
	}

	return levels, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
