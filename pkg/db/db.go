package db

import (
	"fmt"
	"os"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/gateway-admin/pkg/model"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Config holds database connection configuration
type Config struct {
	// URL is the database connection URL (defaults to DATABASE_URL env var)
	URL string
	// Debug logs every statement
	Debug bool
}

// Connect establishes a database connection.
// If no URL is provided, it reads from DATABASE_URL environment variable.
// postgres:// URLs and key=value DSNs open PostgreSQL; sqlite://, file: and
// :memory: open SQLite.
func Connect(cfg Config) (*gorm.DB, error) {
	dbURL := cfg.URL
	if dbURL == "" {
		dbURL = URL()
	}
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	// Default to silent logging unless GATEWAY_LOG_LEVEL=debug is set
	logMode := logger.Silent
	if cfg.Debug || os.Getenv("GATEWAY_LOG_LEVEL") == "debug" {
		logMode = logger.Info
	}
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logMode),
		TranslateError: true,
	}

	dialect, err := Dialect(dbURL)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch dialect {
	case DialectPostgres:
		dialector = postgres.New(postgres.Config{
			DSN:                  dbURL,
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		})
	case DialectSQLite:
		dialector = sqlite.Open(sqliteDSN(dbURL))
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if dialect == DialectSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		// a single connection keeps :memory: databases shared across queries
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// Dialect infers the SQL dialect from a connection URL.
func Dialect(dsn string) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DialectPostgres, nil
	case strings.Contains(lower, "host="), strings.Contains(lower, "dbname="), strings.Contains(lower, "sslmode="):
		return DialectPostgres, nil
	case strings.HasPrefix(lower, "sqlite://"), strings.HasPrefix(lower, "file:"), lower == ":memory:":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database url %q", dsn)
	}
}

// sqliteFKPragma turns on foreign key enforcement, which SQLite leaves off
// per connection.
const sqliteFKPragma = "_pragma=foreign_keys(1)"

func sqliteDSN(dsn string) string {
	trimmed := strings.TrimSpace(dsn)
	if strings.HasPrefix(strings.ToLower(trimmed), "sqlite://") {
		trimmed = trimmed[len("sqlite://"):]
	}
	if trimmed == "" {
		trimmed = ":memory:"
	}
	if strings.Contains(trimmed, "foreign_keys") {
		return trimmed
	}
	if strings.Contains(trimmed, "?") {
		return trimmed + "&" + sqliteFKPragma
	}
	return trimmed + "?" + sqliteFKPragma
}

// OpenMemory opens an empty in-memory SQLite database with the schema applied.
func OpenMemory() (*gorm.DB, error) {
	db, err := Connect(Config{URL: ":memory:"})
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate creates the schema from the models. SQL migrations remain the
// source of truth for PostgreSQL; this serves SQLite deployments and tests.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// URL returns the database URL from environment.
// Returns empty string if DATABASE_URL is not set.
func URL() string {
	return os.Getenv("DATABASE_URL")
}
