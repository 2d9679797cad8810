package endpoints

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
)

func TestHandleCreateCredential(t *testing.T) {
	t.Run("created without echoing the secret", func(t *testing.T) {
		creds := &MockCredentialsStore{}
		creds.On("CreateCredential", mock.Anything, mock.MatchedBy(func(c *store.Credential) bool {
			return c.OwnerType == preference.LevelUser && c.Type == store.CredentialTypeSSH
		}), []byte("private-key")).Run(func(args mock.Arguments) {
			args.Get(1).(*store.Credential).Token = "tok-generated"
		}).Return(nil)

		body := `{"gatewayId":"gw1","ownerId":"alice@gw1","ownerType":"USER","name":"alice ssh","type":"ssh","secret":"private-key"}`
		w := httptest.NewRecorder()
		handleCreateCredential(creds)(w, newRequest("POST", "/credentials", body))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "tok-generated", decodeBody[store.Credential](t, w).Token)
		assert.NotContains(t, w.Body.String(), "private-key")
	})

	t.Run("group owners are rejected", func(t *testing.T) {
		creds := &MockCredentialsStore{}
		body := `{"gatewayId":"gw1","ownerId":"g1","ownerType":"GROUP","name":"n","type":"SSH"}`
		w := httptest.NewRecorder()
		handleCreateCredential(creds)(w, newRequest("POST", "/credentials", body))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		creds.AssertNotCalled(t, "CreateCredential", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid type", func(t *testing.T) {
		creds := &MockCredentialsStore{}
		body := `{"gatewayId":"gw1","ownerId":"gw1","ownerType":"GATEWAY","name":"n","type":"KERBEROS"}`
		w := httptest.NewRecorder()
		handleCreateCredential(creds)(w, newRequest("POST", "/credentials", body))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, `invalid credential type "KERBEROS"`, errorBody(t, w).Message)
	})

	t.Run("token taken", func(t *testing.T) {
		creds := &MockCredentialsStore{}
		creds.On("CreateCredential", mock.Anything, mock.Anything, mock.Anything).Return(store.ErrCredentialExists)

		body := `{"token":"tok-A","gatewayId":"gw1","ownerId":"gw1","ownerType":"GATEWAY","name":"n","type":"PASSWORD"}`
		w := httptest.NewRecorder()
		handleCreateCredential(creds)(w, newRequest("POST", "/credentials", body))

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestHandleDeleteCredential(t *testing.T) {
	creds := &MockCredentialsStore{}
	creds.On("DeleteCredential", mock.Anything, "tok-free").Return(nil)
	creds.On("DeleteCredential", mock.Anything, "tok-used").Return(store.ErrCredentialInUse)
	creds.On("DeleteCredential", mock.Anything, "tok-gone").Return(store.ErrCredentialNotFound)
	handler := handleDeleteCredential(creds)

	tests := []struct {
		token string
		want  int
	}{
		{"tok-free", http.StatusNoContent},
		{"tok-used", http.StatusConflict},
		{"tok-gone", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler(w, withMuxVars(newRequest("DELETE", "/credentials/"+tt.token, ""), map[string]string{"token": tt.token}))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestHandleListCredentials(t *testing.T) {
	creds := &MockCredentialsStore{}
	creds.On("ListCredentials", mock.Anything, "gw1", "alice@gw1").
		Return([]store.Credential{{Token: "tok-A", Name: "alice ssh"}}, nil)

	w := httptest.NewRecorder()
	handleListCredentials(creds)(w, newRequest("GET", "/credentials?gatewayId=gw1&ownerId=alice@gw1", ""))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]store.Credential](t, w), 1)

	w = httptest.NewRecorder()
	handleListCredentials(creds)(w, newRequest("GET", "/credentials", ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetCredential(t *testing.T) {
	creds := &MockCredentialsStore{}
	creds.On("GetCredential", mock.Anything, "tok-gone").Return(nil, store.ErrCredentialNotFound)

	w := httptest.NewRecorder()
	handleGetCredential(creds)(w, withMuxVars(newRequest("GET", "/credentials/tok-gone", ""), map[string]string{"token": "tok-gone"}))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "credential tok-gone not found", errorBody(t, w).Message)
}
