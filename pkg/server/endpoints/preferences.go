package endpoints

import (
	"net/http"
	"strings"

	"github.com/doodlesbykumbi/gateway-admin/pkg/apierr"
	"github.com/doodlesbykumbi/gateway-admin/pkg/audit"
	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
	"github.com/doodlesbykumbi/gateway-admin/pkg/resolver"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
)

// PreferenceRequest is the body of POST /preferences.
type PreferenceRequest struct {
	ResourceType string `json:"resourceType"`
	ResourceID   string `json:"resourceId"`
	Level        string `json:"level"`
	OwnerID      string `json:"ownerId"`
	Key          string `json:"key"`
	Value        string `json:"value"`
	Enforced     bool   `json:"enforced"`
}

// BatchPreferenceRequest is the body of POST /preferences/batch. Every entry
// shares one scope.
type BatchPreferenceRequest struct {
	ResourceType string                  `json:"resourceType"`
	ResourceID   string                  `json:"resourceId"`
	Level        string                  `json:"level"`
	OwnerID      string                  `json:"ownerId"`
	Preferences  []store.PreferenceEntry `json:"preferences"`
}

// BatchResponse reports how many entries of a batch were written.
type BatchResponse struct {
	Committed int `json:"committed"`
}

type batchErrorResponse struct {
	apierr.Body
	Committed int `json:"committed"`
}

// ResolutionResponse is returned by GET /preferences/resolve?sources=true.
type ResolutionResponse struct {
	Preferences resolver.ResolvedPreferences `json:"preferences"`
	Sources     map[string]preference.Level  `json:"sources"`
}

// strictKeys reports whether preference writes must use known keys.
type strictKeys func() bool

// RegisterPreferencesEndpoints registers the preference API endpoints
func RegisterPreferencesEndpoints(s *server.Server) {
	prefs := s.PreferencesStore
	res := s.Resolver
	strict := func() bool { return s.Config().StrictPreferenceKeys }

	// GET /preferences/resolve - Effective preferences for a requester
	s.Router.HandleFunc("/preferences/resolve", handleResolvePreferences(res)).Methods("GET")

	// POST /preferences - Set one preference
	s.Router.HandleFunc("/preferences", handleSetPreference(prefs, strict)).Methods("POST")

	// POST /preferences/batch - Set several preferences in one scope
	s.Router.HandleFunc("/preferences/batch", handleSetPreferencesBatch(prefs, strict)).Methods("POST")

	// GET /preferences/{resourceType}/{resourceId}/sources - Source level per resolved key
	s.Router.HandleFunc("/preferences/{resourceType}/{resourceId}/sources", handlePreferenceSources(res)).Methods("GET")

	// DELETE /preferences/{resourceType}/{resourceId}/all - Wipe one level
	s.Router.HandleFunc("/preferences/{resourceType}/{resourceId}/all", handleDeleteAllPreferences(prefs)).Methods("DELETE")

	// GET /preferences/{resourceType}/{resourceId} - Records at one level
	s.Router.HandleFunc("/preferences/{resourceType}/{resourceId}", handleGetPreferences(prefs)).Methods("GET")

	// DELETE /preferences/{resourceType}/{resourceId} - Delete one key
	s.Router.HandleFunc("/preferences/{resourceType}/{resourceId}", handleDeletePreference(prefs)).Methods("DELETE")
}

func handleResolvePreferences(res *resolver.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		params, err := requireParams(q, "resourceType", "resourceId", "gatewayId")
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		rt, err := parseResourceType(params[0])
		if err != nil {
			respondWithError(w, r, err)
			return
		}

		query := resolver.Query{
			ResourceType: rt,
			ResourceID:   params[1],
			GatewayID:    params[2],
			UserID:       strings.TrimSpace(q.Get("userId")),
			GroupIDs:     parseGroupIDs(q),
		}

		resolution, err := res.ResolveDetailed(r.Context(), query)
		if err != nil {
			respondWithError(w, r, err)
			return
		}

		if isTrue(q, "sources") {
			respondWithJSON(w, http.StatusOK, ResolutionResponse{
				Preferences: resolution.Preferences,
				Sources:     resolution.Sources,
			})
			return
		}
		respondWithJSON(w, http.StatusOK, resolution.Preferences)
	}
}

// scopeFromRequest reads {resourceType}/{resourceId} from the path and
// level/ownerId from the query string.
func scopeFromRequest(r *http.Request) (store.PreferenceScope, error) {
	rt, err := parseResourceType(pathVar(r, "resourceType"))
	if err != nil {
		return store.PreferenceScope{}, err
	}
	params, err := requireParams(r.URL.Query(), "level", "ownerId")
	if err != nil {
		return store.PreferenceScope{}, err
	}
	level, err := parseLevel("level", params[0])
	if err != nil {
		return store.PreferenceScope{}, err
	}
	return store.PreferenceScope{
		ResourceType: rt,
		ResourceID:   pathVar(r, "resourceId"),
		OwnerID:      params[1],
		Level:        level,
	}, nil
}

func handleGetPreferences(prefs store.PreferencesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := scopeFromRequest(r)
		if err != nil {
			respondWithError(w, r, err)
			return
		}

		if isTrue(r.URL.Query(), "detailed") {
			entries, err := prefs.GetPreferencesAtLevelDetailed(r.Context(), scope)
			if err != nil {
				respondWithError(w, r, err)
				return
			}
			if entries == nil {
				entries = []store.PreferenceEntry{}
			}
			respondWithJSON(w, http.StatusOK, entries)
			return
		}

		values, err := prefs.GetPreferencesAtLevel(r.Context(), scope)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		if values == nil {
			values = map[string]string{}
		}
		respondWithJSON(w, http.StatusOK, values)
	}
}

func handlePreferenceSources(res *resolver.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := scopeFromRequest(r)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		q := r.URL.Query()

		query := resolver.Query{
			ResourceType: scope.ResourceType,
			ResourceID:   scope.ResourceID,
			GatewayID:    strings.TrimSpace(q.Get("gatewayId")),
			GroupIDs:     parseGroupIDs(q),
		}
		switch scope.Level {
		case preference.LevelGateway:
			if query.GatewayID == "" {
				query.GatewayID = scope.OwnerID
			}
		case preference.LevelGroup:
			query.GroupIDs = append([]string{scope.OwnerID}, query.GroupIDs...)
		case preference.LevelUser:
			query.UserID = scope.OwnerID
		}

		sources, err := res.Sources(r.Context(), query, scope.Level)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, sources)
	}
}

func (p PreferenceRequest) scope() (store.PreferenceScope, error) {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"resourceType", p.ResourceType},
		{"resourceId", p.ResourceID},
		{"level", p.Level},
		{"ownerId", p.OwnerID},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return store.PreferenceScope{}, apierr.Validation(missing...)
	}
	rt, err := parseResourceType(p.ResourceType)
	if err != nil {
		return store.PreferenceScope{}, err
	}
	level, err := parseLevel("level", p.Level)
	if err != nil {
		return store.PreferenceScope{}, err
	}
	return store.PreferenceScope{
		ResourceType: rt,
		ResourceID:   p.ResourceID,
		OwnerID:      p.OwnerID,
		Level:        level,
	}, nil
}

func checkKey(strict strictKeys, rt preference.ResourceType, key string) error {
	if strings.TrimSpace(key) == "" {
		return apierr.Validation("key")
	}
	if strict != nil && strict() {
		if err := preference.ValidateKey(rt, key); err != nil {
			return &apierr.ValidationError{Message: err.Error(), Fields: []string{"key"}}
		}
	}
	return nil
}

func preferenceEvent(r *http.Request, scope store.PreferenceScope, key string, enforced bool, op string, err error) audit.PreferenceEvent {
	userID, clientIP := actor(r)
	return audit.PreferenceEvent{
		UserID:       userID,
		ClientIP:     clientIP,
		ResourceType: scope.ResourceType.String(),
		ResourceID:   scope.ResourceID,
		Level:        scope.Level.String(),
		OwnerID:      scope.OwnerID,
		Key:          key,
		Enforced:     enforced,
		Operation:    op,
		Success:      err == nil,
		ErrorMessage: errorMessage(err),
	}
}

func handleSetPreference(prefs store.PreferencesStore, strict strictKeys) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PreferenceRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithError(w, r, err)
			return
		}
		scope, err := req.scope()
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		if err := checkKey(strict, scope.ResourceType, req.Key); err != nil {
			respondWithError(w, r, err)
			return
		}

		err = prefs.SetPreference(r.Context(), scope, req.Key, req.Value, req.Enforced)
		audit.Log(preferenceEvent(r, scope, req.Key, req.Enforced, "set", err))
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleSetPreferencesBatch(prefs store.PreferencesStore, strict strictKeys) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BatchPreferenceRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithError(w, r, err)
			return
		}
		scope, err := PreferenceRequest{
			ResourceType: req.ResourceType,
			ResourceID:   req.ResourceID,
			Level:        req.Level,
			OwnerID:      req.OwnerID,
		}.scope()
		if err != nil {
			respondWithError(w, r, err)
			return
		}

		// keys are checked up front so a bad key writes nothing
		for _, p := range req.Preferences {
			if err := checkKey(strict, scope.ResourceType, p.Key); err != nil {
				respondWithError(w, r, err)
				return
			}
		}

		committed := 0
		for _, p := range req.Preferences {
			err := prefs.SetPreference(r.Context(), scope, p.Key, p.Value, p.Enforced)
			audit.Log(preferenceEvent(r, scope, p.Key, p.Enforced, "set", err))
			if err != nil {
				respondWithJSON(w, apierr.StatusCode(err), batchErrorResponse{
					Body:      apierr.NewBody(err),
					Committed: committed,
				})
				return
			}
			committed++
		}
		respondWithJSON(w, http.StatusOK, BatchResponse{Committed: committed})
	}
}

func handleDeletePreference(prefs store.PreferencesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := scopeFromRequest(r)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		key := strings.TrimSpace(r.URL.Query().Get("key"))
		if key == "" {
			respondWithError(w, r, apierr.Validation("key"))
			return
		}

		err = prefs.DeletePreference(r.Context(), scope, key)
		audit.Log(preferenceEvent(r, scope, key, false, "delete", err))
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleDeleteAllPreferences(prefs store.PreferencesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := scopeFromRequest(r)
		if err != nil {
			respondWithError(w, r, err)
			return
		}

		err = prefs.DeleteAllPreferences(r.Context(), scope)
		audit.Log(preferenceEvent(r, scope, "", false, "delete-all", err))
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
