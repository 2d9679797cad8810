// Package db carries the SQL migrations so that production builds can run
// them without the source tree.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
