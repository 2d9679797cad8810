package resolver

import (
	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
)

// LevelRecords holds the raw records one owner has at one level.
type LevelRecords struct {
	OwnerID string
	Entries map[string]store.PreferenceEntry
}

func NewLevelRecords(ownerID string, entries []store.PreferenceEntry) LevelRecords {
	m := make(map[string]store.PreferenceEntry, len(entries))
	for _, e := range entries {
		m[e.Key] = e
	}
	return LevelRecords{OwnerID: ownerID, Entries: m}
}

func (l LevelRecords) get(key string) (store.PreferenceEntry, bool) {
	if l.Entries == nil {
		return store.PreferenceEntry{}, false
	}
	e, ok := l.Entries[key]
	return e, ok
}

// Levels is the raw input of one resolution. Groups keep query order.
type Levels struct {
	Gateway LevelRecords
	Groups  []LevelRecords
	User    LevelRecords
}

func (l *Levels) keys() []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(r LevelRecords) {
		for k := range r.Entries {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				out = append(out, k)
			}
		}
	}
	add(l.Gateway)
	for _, g := range l.Groups {
		add(g)
	}
	add(l.User)
	return out
}

// Merge applies precedence and enforcement to every key.
func (l *Levels) Merge() *Resolution {
	res := &Resolution{
		Preferences: ResolvedPreferences{},
		Sources:     map[string]preference.Level{},
	}
	for _, key := range l.keys() {
		value, level := l.resolveKey(key)
		res.Preferences[key] = value
		res.Sources[key] = level
	}
	return res
}

func (l *Levels) resolveKey(key string) (string, preference.Level) {
	gateway, hasGateway := l.Gateway.get(key)
	if hasGateway && gateway.Enforced {
		return gateway.Value, preference.LevelGateway
	}
	for _, g := range l.Groups {
		if e, ok := g.get(key); ok && e.Enforced {
			return e.Value, preference.LevelGroup
		}
	}
	if e, ok := l.User.get(key); ok {
		return e.Value, preference.LevelUser
	}
	for _, g := range l.Groups {
		if e, ok := g.get(key); ok {
			return e.Value, preference.LevelGroup
		}
	}
	return gateway.Value, preference.LevelGateway
}

// ComputeSourceMap attributes each resolved key to a level by comparing raw
// values: USER when the user's value equals the resolved one, then GROUP,
// then GATEWAY when the gateway defines the key, else ownLevel. Unlike
// Resolution.Sources it reports where an equal value lives, which is what
// an editor table shows.
func ComputeSourceMap(resolved ResolvedPreferences, levels *Levels, ownLevel preference.Level) map[string]preference.Level {
	sources := make(map[string]preference.Level, len(resolved))
	for key, value := range resolved {
		sources[key] = sourceOf(key, value, levels, ownLevel)
	}
	return sources
}

func sourceOf(key, value string, levels *Levels, ownLevel preference.Level) preference.Level {
	if levels == nil {
		return ownLevel
	}
	if e, ok := levels.User.get(key); ok && e.Value == value {
		return preference.LevelUser
	}
	for _, g := range levels.Groups {
		if e, ok := g.get(key); ok && e.Value == value {
			return preference.LevelGroup
		}
	}
	if _, ok := levels.Gateway.get(key); ok {
		return preference.LevelGateway
	}
	return ownLevel
}
