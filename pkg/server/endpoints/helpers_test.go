package endpoints

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/gateway-admin/pkg/apierr"
	"github.com/doodlesbykumbi/gateway-admin/pkg/audit"
	"github.com/doodlesbykumbi/gateway-admin/pkg/identity"
)

func init() {
	audit.SetEnabled(false)
}

func withMuxVars(r *http.Request, vars map[string]string) *http.Request {
	return mux.SetURLVars(r, vars)
}

func requestWithIdentity(r *http.Request, userID string) *http.Request {
	login, gateway := identity.SplitUserID(userID)
	id := &identity.Identity{UserID: userID, Login: login, GatewayID: gateway}
	return r.WithContext(identity.Set(r.Context(), id))
}

func newRequest(method, target, body string) *http.Request {
	if body == "" {
		return httptest.NewRequest(method, target, nil)
	}
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) apierr.Body {
	t.Helper()
	return decodeBody[apierr.Body](t, w)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
