// Package server provides the HTTP server for the gateway admin API.
//
// NewServer builds the GORM stores, the preference resolver and the access
// services on top of one database handle, and installs the request
// middleware on the router:
//
//	srv, err := server.NewServer(cfg, db, cipher, "0.0.0.0", "8080")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	endpoints.RegisterAll(srv)
//	log.Fatal(srv.Start())
//
// # Components
//
//   - Router: gorilla/mux router with metrics and JWT middleware
//   - Stores: preferences, access grants, credentials, catalog, groups, health
//   - Resolver: preference resolution across gateway, group and user levels
//   - Registry, Aggregator: access grant writes and per-user access control
//
// The outer handler adds panic recovery, an access log routed through
// logrus, and CORS checked against cors_allowed_origins.
package server
