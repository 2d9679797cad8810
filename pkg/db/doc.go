// Package db provides database connection utilities for the gateway admin
// service.
//
// PostgreSQL is the production database. SQLite (pure Go, via
// github.com/glebarez/sqlite) backs tests and single-node deployments.
//
// # Connection
//
//	database, err := db.Connect(db.Config{URL: os.Getenv("DATABASE_URL")})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Tests
//
//	database, err := db.OpenMemory()
package db
