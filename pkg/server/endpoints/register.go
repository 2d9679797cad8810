package endpoints

import (
	"github.com/doodlesbykumbi/gateway-admin/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterStatusEndpoints(srv)
	RegisterPreferencesEndpoints(srv)
	RegisterResourceAccessEndpoints(srv)
	RegisterCredentialsEndpoints(srv)
	RegisterGroupsEndpoints(srv)
}
