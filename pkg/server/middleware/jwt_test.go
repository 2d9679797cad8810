package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/gateway-admin/pkg/apierr"
	"github.com/doodlesbykumbi/gateway-admin/pkg/audit"
	"github.com/doodlesbykumbi/gateway-admin/pkg/identity"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func init() {
	audit.SetEnabled(false)
}

func identityHandler(t *testing.T, got **identity.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if ok {
			*got = id
		}
		w.WriteHeader(http.StatusOK)
	})
}

func serve(h http.Handler, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	req.RemoteAddr = "10.1.2.3:5555"
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func assertUnauthorized(t *testing.T, w *httptest.ResponseRecorder, message string) {
	t.Helper()
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	var body apierr.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apierr.CodeAuthorization, body.Error.Code)
	assert.Equal(t, message, body.Message)
}

func TestMiddleware_ValidToken(t *testing.T) {
	auth := NewJWTAuthenticator(testSecret, "", "")
	token, err := auth.Issue("alice@gw1", "", time.Hour)
	require.NoError(t, err)

	var got *identity.Identity
	w := serve(auth.Middleware(identityHandler(t, &got)), "/preferences/resolve", "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, "alice@gw1", got.UserID)
	assert.Equal(t, "gw1", got.GatewayID)
	assert.Equal(t, "alice", got.Login)
	assert.Equal(t, "10.1.2.3", got.ClientIP())
}

func TestMiddleware_MissingAuthorization(t *testing.T) {
	auth := NewJWTAuthenticator(testSecret, "", "")
	var got *identity.Identity
	w := serve(auth.Middleware(identityHandler(t, &got)), "/resource-access", "")

	assertUnauthorized(t, w, "authorization missing")
	assert.Nil(t, got)
}

func TestMiddleware_MalformedHeader(t *testing.T) {
	auth := NewJWTAuthenticator(testSecret, "", "")
	var got *identity.Identity
	w := serve(auth.Middleware(identityHandler(t, &got)), "/resource-access", `Token token="abc"`)

	assertUnauthorized(t, w, "malformed authorization header")
}

func TestMiddleware_ExpiredToken(t *testing.T) {
	auth := NewJWTAuthenticator(testSecret, "", "")
	token, err := auth.Issue("alice@gw1", "gw1", -time.Minute)
	require.NoError(t, err)

	var got *identity.Identity
	w := serve(auth.Middleware(identityHandler(t, &got)), "/resource-access", "Bearer "+token)

	assertUnauthorized(t, w, "token expired")
}

func TestMiddleware_WrongSecret(t *testing.T) {
	other := NewJWTAuthenticator([]byte("another-secret"), "", "")
	token, err := other.Issue("alice@gw1", "gw1", time.Hour)
	require.NoError(t, err)

	auth := NewJWTAuthenticator(testSecret, "", "")
	var got *identity.Identity
	w := serve(auth.Middleware(identityHandler(t, &got)), "/resource-access", "Bearer "+token)

	assertUnauthorized(t, w, "invalid token")
}

func TestMiddleware_PublicPaths(t *testing.T) {
	auth := NewJWTAuthenticator(testSecret, "", "")
	for path := range PublicPaths {
		var got *identity.Identity
		w := serve(auth.Middleware(identityHandler(t, &got)), path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestVerify(t *testing.T) {
	t.Run("issuer and audience", func(t *testing.T) {
		auth := NewJWTAuthenticator(testSecret, "portal", "gateway-admin")
		token, err := auth.Issue("alice@gw1", "gw1", time.Hour)
		require.NoError(t, err)

		claims, err := auth.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "alice@gw1", claims.Subject)
		assert.Equal(t, "gw1", claims.Gateway)

		strict := NewJWTAuthenticator(testSecret, "portal", "another-audience")
		_, err = strict.Verify(token)
		assert.ErrorIs(t, err, jwt.ErrTokenInvalidAudience)
	})

	t.Run("rejects other signing methods", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS512, identity.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "alice@gw1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		signed, err := token.SignedString(testSecret)
		require.NoError(t, err)

		_, err = NewJWTAuthenticator(testSecret, "", "").Verify(signed)
		assert.Error(t, err)
	})

	t.Run("requires a subject", func(t *testing.T) {
		auth := NewJWTAuthenticator(testSecret, "", "")
		token, err := auth.Issue("", "gw1", time.Hour)
		require.NoError(t, err)

		_, err = auth.Verify(token)
		assert.Error(t, err)
	})
}

func TestNewJWTAuthenticatorFromEnv(t *testing.T) {
	t.Setenv(SecretEnv, "")
	_, err := NewJWTAuthenticatorFromEnv("", "")
	assert.Error(t, err)

	t.Setenv(SecretEnv, "s3cret")
	auth, err := NewJWTAuthenticatorFromEnv("", "")
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), auth.secret)
}

func TestClientIP(t *testing.T) {
	t.Cleanup(func() { require.NoError(t, SetTrustedProxies(nil)) })

	tests := []struct {
		name      string
		trusted   []string
		remote    string
		forwarded string
		want      string
	}{
		{"no header", nil, "192.0.2.1:1234", "", "192.0.2.1"},
		{"untrusted peer spoofs header", nil, "192.0.2.1:1234", "203.0.113.9", "192.0.2.1"},
		{"trusted peer", []string{"10.0.0.5"}, "10.0.0.5:443", "203.0.113.9", "203.0.113.9"},
		{"spoofed leftmost hop ignored", []string{"10.0.0.0/8"}, "10.0.0.5:443", "198.51.100.7, 203.0.113.9, 10.0.0.2", "203.0.113.9"},
		{"all hops trusted", []string{"10.0.0.0/8"}, "10.0.0.5:443", "10.0.0.2", "10.0.0.2"},
		{"garbage hop", []string{"10.0.0.0/8"}, "10.0.0.5:443", "not-an-ip", "10.0.0.5"},
		{"trusted peer without header", []string{"10.0.0.5"}, "10.0.0.5:443", "", "10.0.0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, SetTrustedProxies(tt.trusted))
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}

func TestSetTrustedProxies(t *testing.T) {
	t.Cleanup(func() { require.NoError(t, SetTrustedProxies(nil)) })

	assert.NoError(t, SetTrustedProxies([]string{"10.0.0.1", "2001:db8::/32"}))
	assert.Error(t, SetTrustedProxies([]string{"proxy.internal"}))
	assert.Error(t, SetTrustedProxies([]string{"10.0.0.0/99"}))
}
