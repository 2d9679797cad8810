package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
	"github.com/doodlesbykumbi/gateway-admin/pkg/resolver"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
)

// Resolution is a resolved preference map with the level each value came from.
type Resolution struct {
	Preferences map[string]string           `json:"preferences"`
	Sources     map[string]preference.Level `json:"sources"`
}

type preferenceBody struct {
	ResourceType string `json:"resourceType"`
	ResourceID   string `json:"resourceId"`
	Level        string `json:"level"`
	OwnerID      string `json:"ownerId"`
	Key          string `json:"key,omitempty"`
	Value        string `json:"value,omitempty"`
	Enforced     bool   `json:"enforced,omitempty"`

	Preferences []store.PreferenceEntry `json:"preferences,omitempty"`
}

type batchResult struct {
	Committed int `json:"committed"`
}

func resolveQuery(q resolver.Query) url.Values {
	v := url.Values{}
	v.Set("resourceType", q.ResourceType.String())
	v.Set("resourceId", q.ResourceID)
	v.Set("gatewayId", q.GatewayID)
	if q.UserID != "" {
		v.Set("userId", q.UserID)
	}
	if len(q.GroupIDs) > 0 {
		v.Set("groupIds", strings.Join(q.GroupIDs, ","))
	}
	return v
}

func scopePath(scope store.PreferenceScope, suffix string) string {
	return "/preferences/" + scope.ResourceType.String() + "/" + url.PathEscape(scope.ResourceID) + suffix
}

func scopeQuery(scope store.PreferenceScope) url.Values {
	v := url.Values{}
	v.Set("level", scope.Level.String())
	v.Set("ownerId", scope.OwnerID)
	return v
}

func scopeBody(scope store.PreferenceScope) preferenceBody {
	return preferenceBody{
		ResourceType: scope.ResourceType.String(),
		ResourceID:   scope.ResourceID,
		Level:        scope.Level.String(),
		OwnerID:      scope.OwnerID,
	}
}

// Resolve returns the effective preferences for q.
func (c *Client) Resolve(ctx context.Context, q resolver.Query) (map[string]string, error) {
	out := map[string]string{}
	err := c.do(ctx, request{method: http.MethodGet, path: "/preferences/resolve", query: resolveQuery(q), out: &out})
	return out, err
}

// ResolveWithSources is Resolve plus the winning level of each key.
func (c *Client) ResolveWithSources(ctx context.Context, q resolver.Query) (*Resolution, error) {
	v := resolveQuery(q)
	v.Set("sources", "true")
	out := &Resolution{}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/preferences/resolve", query: v, out: out}); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPreferences returns the records explicitly set in scope.
func (c *Client) GetPreferences(ctx context.Context, scope store.PreferenceScope) (map[string]string, error) {
	out := map[string]string{}
	err := c.do(ctx, request{method: http.MethodGet, path: scopePath(scope, ""), query: scopeQuery(scope), out: &out})
	return out, err
}

// GetPreferencesDetailed returns the records in scope with their enforced flag.
func (c *Client) GetPreferencesDetailed(ctx context.Context, scope store.PreferenceScope) ([]store.PreferenceEntry, error) {
	v := scopeQuery(scope)
	v.Set("detailed", "true")
	var out []store.PreferenceEntry
	err := c.do(ctx, request{method: http.MethodGet, path: scopePath(scope, ""), query: v, out: &out})
	return out, err
}

// Sources returns the source level of each resolved key as seen by an
// editor of scope.
func (c *Client) Sources(ctx context.Context, scope store.PreferenceScope, gatewayID string, groupIDs []string) (map[string]preference.Level, error) {
	v := scopeQuery(scope)
	if gatewayID != "" {
		v.Set("gatewayId", gatewayID)
	}
	if len(groupIDs) > 0 {
		v.Set("groupIds", strings.Join(groupIDs, ","))
	}
	out := map[string]preference.Level{}
	err := c.do(ctx, request{method: http.MethodGet, path: scopePath(scope, "/sources"), query: v, out: &out})
	return out, err
}

// SetPreference upserts one record.
func (c *Client) SetPreference(ctx context.Context, scope store.PreferenceScope, key, value string, enforced bool) error {
	body := scopeBody(scope)
	body.Key, body.Value, body.Enforced = key, value, enforced
	return c.do(ctx, request{method: http.MethodPost, path: "/preferences", in: body})
}

// SetPreferences writes entries in order and returns how many were
// committed. On error the count covers the entries written before it.
func (c *Client) SetPreferences(ctx context.Context, scope store.PreferenceScope, entries []store.PreferenceEntry) (int, error) {
	body := scopeBody(scope)
	body.Preferences = entries
	var out, failed batchResult
	err := c.do(ctx, request{method: http.MethodPost, path: "/preferences/batch", in: body, out: &out, errOut: &failed})
	if err != nil {
		return failed.Committed, err
	}
	return out.Committed, nil
}

// DeletePreference removes one key from scope.
func (c *Client) DeletePreference(ctx context.Context, scope store.PreferenceScope, key string) error {
	v := scopeQuery(scope)
	v.Set("key", key)
	return c.do(ctx, request{method: http.MethodDelete, path: scopePath(scope, ""), query: v})
}

// DeleteAllPreferences wipes scope.
func (c *Client) DeleteAllPreferences(ctx context.Context, scope store.PreferenceScope) error {
	return c.do(ctx, request{method: http.MethodDelete, path: scopePath(scope, "/all"), query: scopeQuery(scope)})
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
