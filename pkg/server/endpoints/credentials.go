package endpoints

import (
	"errors"
	"net/http"
	"strings"

	"github.com/doodlesbykumbi/gateway-admin/pkg/apierr"
	"github.com/doodlesbykumbi/gateway-admin/pkg/audit"
	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
)

// CredentialRequest is the body of POST /credentials. Secret is sealed
// before it is stored and never returned.
type CredentialRequest struct {
	Token       string `json:"token,omitempty"`
	GatewayID   string `json:"gatewayId"`
	OwnerID     string `json:"ownerId"`
	OwnerType   string `json:"ownerType"`
	Name        string `json:"name"`
	Username    string `json:"username,omitempty"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Secret      string `json:"secret,omitempty"`
}

func (c CredentialRequest) credential() (*store.Credential, error) {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"gatewayId", c.GatewayID},
		{"ownerId", c.OwnerID},
		{"ownerType", c.OwnerType},
		{"name", c.Name},
		{"type", c.Type},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, apierr.Validation(missing...)
	}

	ownerType, err := parseLevel("ownerType", c.OwnerType)
	if err != nil {
		return nil, err
	}
	if ownerType == preference.LevelGroup {
		return nil, apierr.Validationf("credentials are owned by a USER or the GATEWAY")
	}

	credType := store.CredentialType(strings.ToUpper(c.Type))
	switch credType {
	case store.CredentialTypeSSH, store.CredentialTypePassword:
	default:
		return nil, apierr.Validationf("invalid credential type %q", c.Type)
	}

	return &store.Credential{
		Token:       strings.TrimSpace(c.Token),
		GatewayID:   c.GatewayID,
		OwnerID:     c.OwnerID,
		OwnerType:   ownerType,
		Name:        c.Name,
		Username:    c.Username,
		Type:        credType,
		Description: c.Description,
	}, nil
}

// RegisterCredentialsEndpoints registers the credential catalog endpoints
func RegisterCredentialsEndpoints(s *server.Server) {
	credentials := s.CredentialsStore

	s.Router.HandleFunc("/credentials", handleListCredentials(credentials)).Methods("GET")
	s.Router.HandleFunc("/credentials", handleCreateCredential(credentials)).Methods("POST")
	s.Router.HandleFunc("/credentials/{token}", handleGetCredential(credentials)).Methods("GET")
	s.Router.HandleFunc("/credentials/{token}", handleDeleteCredential(credentials)).Methods("DELETE")
}

func credentialError(err error, token string) error {
	switch {
	case errors.Is(err, store.ErrCredentialNotFound):
		return apierr.NotFound("credential", token)
	case errors.Is(err, store.ErrCredentialExists):
		return apierr.Conflictf("credential %s already exists", token)
	case errors.Is(err, store.ErrCredentialInUse):
		return apierr.Conflictf("credential %s is still referenced by access grants", token)
	default:
		return err
	}
}

func handleListCredentials(credentials store.CredentialsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := requireParams(r.URL.Query(), "gatewayId")
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		ownerID := strings.TrimSpace(r.URL.Query().Get("ownerId"))

		creds, err := credentials.ListCredentials(r.Context(), params[0], ownerID)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		if creds == nil {
			creds = []store.Credential{}
		}
		respondWithJSON(w, http.StatusOK, creds)
	}
}

func handleGetCredential(credentials store.CredentialsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := pathVar(r, "token")
		cred, err := credentials.GetCredential(r.Context(), token)
		if err != nil {
			respondWithError(w, r, credentialError(err, token))
			return
		}
		respondWithJSON(w, http.StatusOK, cred)
	}
}

func handleCreateCredential(credentials store.CredentialsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CredentialRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithError(w, r, err)
			return
		}
		cred, err := req.credential()
		if err != nil {
			respondWithError(w, r, err)
			return
		}

		err = credentials.CreateCredential(r.Context(), cred, []byte(req.Secret))

		userID, clientIP := actor(r)
		audit.Log(audit.CredentialEvent{
			UserID:       userID,
			ClientIP:     clientIP,
			Token:        cred.Token,
			Name:         cred.Name,
			Operation:    "create",
			Success:      err == nil,
			ErrorMessage: errorMessage(err),
		})

		if err != nil {
			respondWithError(w, r, credentialError(err, cred.Token))
			return
		}
		respondWithJSON(w, http.StatusCreated, cred)
	}
}

func handleDeleteCredential(credentials store.CredentialsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := pathVar(r, "token")

		err := credentials.DeleteCredential(r.Context(), token)

		userID, clientIP := actor(r)
		audit.Log(audit.CredentialEvent{
			UserID:       userID,
			ClientIP:     clientIP,
			Token:        token,
			Operation:    "delete",
			Success:      err == nil,
			ErrorMessage: errorMessage(err),
		})

		if err != nil {
			respondWithError(w, r, credentialError(err, token))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
