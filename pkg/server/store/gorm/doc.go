// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// The implementations run against PostgreSQL in production and against
// SQLite (github.com/glebarez/sqlite) in tests and single-node setups, so
// they stick to portable SQL: composite ON CONFLICT upserts, plain
// predicates, no dialect-specific functions.
package gorm
