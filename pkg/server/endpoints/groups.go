package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/gateway-admin/pkg/server"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
)

// MembershipsResponse lists the groups a user belongs to.
type MembershipsResponse struct {
	GatewayID string   `json:"gatewayId"`
	UserID    string   `json:"userId"`
	Groups    []string `json:"groups"`
}

// RegisterGroupsEndpoints registers the group membership endpoint
func RegisterGroupsEndpoints(s *server.Server) {
	s.Router.HandleFunc("/groups/memberships", handleGroupMemberships(s.GroupsStore)).Methods("GET")
}

func handleGroupMemberships(groups store.GroupsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := requireParams(r.URL.Query(), "gatewayId", "userId")
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		ids, err := groups.GroupsForUser(r.Context(), params[0], params[1])
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		if ids == nil {
			ids = []string{}
		}
		respondWithJSON(w, http.StatusOK, MembershipsResponse{
			GatewayID: params[0],
			UserID:    params[1],
			Groups:    ids,
		})
	}
}
