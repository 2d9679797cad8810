package endpoints

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/doodlesbykumbi/gateway-admin/pkg/apierr"
	"github.com/doodlesbykumbi/gateway-admin/pkg/identity"
	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/middleware"
)

const maxBodyBytes = 1 << 20

func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	status := apierr.StatusCode(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	respondWithJSON(w, status, apierr.NewBody(err))
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apierr.Validationf("request body is empty")
		}
		return apierr.Validationf("invalid JSON body: %v", err)
	}
	return nil
}

// requireParams returns the named query parameters, or a ValidationError
// listing every one that is missing.
func requireParams(q url.Values, names ...string) ([]string, error) {
	values := make([]string, len(names))
	var missing []string
	for i, name := range names {
		values[i] = strings.TrimSpace(q.Get(name))
		if values[i] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, apierr.Validation(missing...)
	}
	return values, nil
}

// parseGroupIDs accepts comma separated values, repeated parameters, or both.
func parseGroupIDs(q url.Values) []string {
	var ids []string
	for _, raw := range q["groupIds"] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func parseResourceType(s string) (preference.ResourceType, error) {
	rt, err := preference.ParseResourceType(s)
	if err != nil {
		return 0, apierr.Validationf("invalid resourceType %q", s)
	}
	return rt, nil
}

func parseLevel(name, s string) (preference.Level, error) {
	level, err := preference.ParseLevel(s)
	if err != nil {
		return 0, apierr.Validationf("invalid %s %q", name, s)
	}
	return level, nil
}

func pathVar(r *http.Request, name string) string {
	v, err := url.PathUnescape(mux.Vars(r)[name])
	if err != nil {
		return mux.Vars(r)[name]
	}
	return v
}

func grantID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apierr.Validationf("invalid access grant id %q", raw)
	}
	return id, nil
}

func isTrue(q url.Values, name string) bool {
	v, _ := strconv.ParseBool(q.Get(name))
	return v
}

// actor identifies the caller for audit records.
func actor(r *http.Request) (userID, clientIP string) {
	if id, ok := identity.Get(r.Context()); ok {
		return id.UserID, id.ClientIP()
	}
	return identity.UserIDFrom(r.Context()), middleware.ClientIP(r)
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
