package endpoints

import (
	"net/http"
	"strings"

	"github.com/doodlesbykumbi/gateway-admin/pkg/access"
	"github.com/doodlesbykumbi/gateway-admin/pkg/apierr"
	"github.com/doodlesbykumbi/gateway-admin/pkg/audit"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
)

// RegisterResourceAccessEndpoints registers the access grant API endpoints
func RegisterResourceAccessEndpoints(s *server.Server) {
	registry := s.Registry

	// GET /resource-access - Grants on one resource
	s.Router.HandleFunc("/resource-access", handleListAccessGrants(registry)).Methods("GET")

	// GET /resource-access/by-type - A gateway's grants on one resource type
	s.Router.HandleFunc("/resource-access/by-type", handleListAccessGrantsByType(registry)).Methods("GET")

	// GET /resource-access/enabled - Enabled grants on one resource
	s.Router.HandleFunc("/resource-access/enabled", handleListEnabledAccessGrants(registry)).Methods("GET")

	// GET /resource-access/owner/{ownerId} - Grants held by one owner
	s.Router.HandleFunc("/resource-access/owner/{ownerId}", handleListAccessGrantsByOwner(registry)).Methods("GET")

	// GET /resource-access/access-control - Credentials a user can reach
	s.Router.HandleFunc("/resource-access/access-control", handleAccessControl(s.Aggregator)).Methods("GET")

	// POST /resource-access - Create a grant
	s.Router.HandleFunc("/resource-access", handleCreateAccessGrant(registry)).Methods("POST")

	// GET /resource-access/{id} - Fetch one grant
	s.Router.HandleFunc("/resource-access/{id:[0-9]+}", handleGetAccessGrant(registry)).Methods("GET")

	// PUT /resource-access/{id} - Partial update
	s.Router.HandleFunc("/resource-access/{id:[0-9]+}", handleUpdateAccessGrant(registry)).Methods("PUT")

	// DELETE /resource-access/{id} - Hard delete
	s.Router.HandleFunc("/resource-access/{id:[0-9]+}", handleDeleteAccessGrant(registry)).Methods("DELETE")
}

func respondWithGrants(w http.ResponseWriter, r *http.Request, grants []store.AccessGrant, err error) {
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	if grants == nil {
		grants = []store.AccessGrant{}
	}
	respondWithJSON(w, http.StatusOK, grants)
}

func handleListAccessGrants(registry *access.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := requireParams(r.URL.Query(), "resourceType", "resourceId")
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		rt, err := parseResourceType(params[0])
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		grants, err := registry.GetAccessGrants(r.Context(), rt, params[1])
		respondWithGrants(w, r, grants, err)
	}
}

func handleListAccessGrantsByType(registry *access.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := requireParams(r.URL.Query(), "gatewayId", "resourceType")
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		rt, err := parseResourceType(params[1])
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		grants, err := registry.GetAccessGrantsByType(r.Context(), params[0], rt)
		respondWithGrants(w, r, grants, err)
	}
}

func handleListEnabledAccessGrants(registry *access.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := requireParams(r.URL.Query(), "resourceType", "resourceId")
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		rt, err := parseResourceType(params[0])
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		grants, err := registry.GetEnabledAccessGrants(r.Context(), rt, params[1])
		respondWithGrants(w, r, grants, err)
	}
}

func handleListAccessGrantsByOwner(registry *access.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := requireParams(r.URL.Query(), "ownerType")
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		ownerType, err := parseLevel("ownerType", params[0])
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		grants, err := registry.GetAccessGrantsByOwner(r.Context(), pathVar(r, "ownerId"), ownerType)
		respondWithGrants(w, r, grants, err)
	}
}

func handleAccessControl(aggregator *access.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := requireParams(r.URL.Query(), "gatewayId")
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		userID := strings.TrimSpace(r.URL.Query().Get("userId"))

		view, err := aggregator.GetAccessControl(r.Context(), params[0], userID)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, view)
	}
}

func handleGetAccessGrant(registry *access.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := grantID(r)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		grant, err := registry.GetAccessGrant(r.Context(), id)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, grant)
	}
}

func handleCreateAccessGrant(registry *access.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req access.AccessGrantRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithError(w, r, err)
			return
		}

		grant, err := registry.CreateAccessGrant(r.Context(), req)

		userID, clientIP := actor(r)
		event := audit.GrantEvent{
			UserID:          userID,
			ClientIP:        clientIP,
			ResourceType:    req.ResourceType,
			ResourceID:      req.ResourceID,
			OwnerType:       req.OwnerType,
			OwnerID:         req.OwnerID,
			CredentialToken: req.CredentialToken,
			Operation:       "create",
			Success:         err == nil,
			ErrorMessage:    errorMessage(err),
		}
		if grant != nil {
			event.GrantID = grant.ID
		}
		audit.Log(event)

		if err != nil {
			respondWithError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, grant)
	}
}

func handleUpdateAccessGrant(registry *access.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := grantID(r)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		var patch store.AccessGrantPatch
		if err := decodeJSON(r, &patch); err != nil {
			respondWithError(w, r, err)
			return
		}
		if patch.IsEmpty() {
			respondWithError(w, r, apierr.Validationf("update must set enabled, credentialToken or loginUsername"))
			return
		}

		grant, err := registry.UpdateAccessGrant(r.Context(), id, patch)

		userID, clientIP := actor(r)
		event := audit.GrantEvent{
			UserID:       userID,
			ClientIP:     clientIP,
			GrantID:      id,
			Operation:    "update",
			Success:      err == nil,
			ErrorMessage: errorMessage(err),
		}
		if patch.CredentialToken != nil {
			event.CredentialToken = *patch.CredentialToken
		}
		audit.Log(event)

		if err != nil {
			respondWithError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, grant)
	}
}

func handleDeleteAccessGrant(registry *access.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := grantID(r)
		if err != nil {
			respondWithError(w, r, err)
			return
		}

		err = registry.DeleteAccessGrant(r.Context(), id)

		userID, clientIP := actor(r)
		audit.Log(audit.GrantEvent{
			UserID:       userID,
			ClientIP:     clientIP,
			GrantID:      id,
			Operation:    "delete",
			Success:      err == nil,
			ErrorMessage: errorMessage(err),
		})

		if err != nil {
			respondWithError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
