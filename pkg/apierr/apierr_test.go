package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("credentialToken"), http.StatusBadRequest},
		{"not found", NotFound("access grant", "7"), http.StatusNotFound},
		{"conflict", Conflictf("duplicate"), http.StatusConflict},
		{"authorization", &AuthorizationError{}, http.StatusUnauthorized},
		{"transient with status", &TransientError{StatusCode: 429}, http.StatusTooManyRequests},
		{"transient without status", &TransientError{Err: errors.New("reset")}, http.StatusServiceUnavailable},
		{"wrapped", fmt.Errorf("create: %w", Validation("resourceId")), http.StatusBadRequest},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestValidationMessage(t *testing.T) {
	assert.Equal(t, "missing required fields: credentialToken, ownerType", Validation("credentialToken", "ownerType").Error())
	assert.Equal(t, "bad level", Validationf("bad %s", "level").Error())
}

func TestFromStatus(t *testing.T) {
	var authz *AuthorizationError
	assert.ErrorAs(t, FromStatus(401, "expired"), &authz)

	assert.True(t, IsRetryable(FromStatus(503, "")))
	assert.True(t, IsRetryable(FromStatus(429, "slow down")))
	assert.False(t, IsRetryable(FromStatus(400, "bad")))
	assert.False(t, IsRetryable(FromStatus(409, "dup")))
	assert.Equal(t, "Service Unavailable", FromStatus(503, "").Error())
	assert.Equal(t, "access grant 7 not found", FromStatus(404, "access grant 7 not found").Error())
}

func TestExtractMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message wins", `{"message":"first","error":"second"}`, "first"},
		{"error string", `{"error":"second","errorMessage":"third"}`, "second"},
		{"error object", `{"error":{"code":"conflict","message":"nested"}}`, "nested"},
		{"errorMessage", `{"errorMessage":"third","errors":["x"]}`, "third"},
		{"errors list", `{"errors":["a",{"message":"b"}]}`, "a; b"},
		{"plain text", "  gateway timeout \n", "gateway timeout"},
		{"empty", "", ""},
		{"unknown json", `{"detail":"x"}`, `{"detail":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMessage([]byte(tt.body)))
		})
	}
}

func TestNewBody(t *testing.T) {
	body := NewBody(Validation("credentialToken"))
	assert.Equal(t, CodeValidation, body.Error.Code)
	assert.Equal(t, "missing required fields: credentialToken", body.Message)
	assert.Equal(t, body.Message, body.Error.Message)

	body = NewBody(errors.New("pq: connection refused"))
	assert.Equal(t, CodeInternal, body.Error.Code)
	assert.Equal(t, "Internal Server Error", body.Message)

	raw, err := json.Marshal(NewBody(Conflictf("duplicate grant")))
	assert.NoError(t, err)
	assert.Equal(t, "duplicate grant", ExtractMessage(raw))
}
