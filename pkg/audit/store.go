package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// DatabaseURLEnv names the PostgreSQL database audit records are copied to.
// It is usually the gateway's own database, whose migrations create the
// messages table.
const DatabaseURLEnv = "GATEWAY_AUDIT_DATABASE_URL"

// Store appends audit records to the messages table.
type Store struct {
	db *sql.DB
}

// NewStore opens the database named by GATEWAY_AUDIT_DATABASE_URL. It
// returns nil, nil when the variable is unset.
func NewStore() (*Store, error) {
	dbURL := strings.TrimSpace(os.Getenv(DatabaseURLEnv))
	if dbURL == "" {
		return nil, nil
	}
	lower := strings.ToLower(dbURL)
	if !strings.HasPrefix(lower, "postgres://") && !strings.HasPrefix(lower, "postgresql://") {
		return nil, fmt.Errorf("%s must be a postgres:// url", DatabaseURLEnv)
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewStoreWithDB wraps an open connection.
func NewStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save appends event. The acting user, client address and outcome are
// copied out of the structured data into their own columns.
func (s *Store) Save(event Event) error {
	if s.db == nil {
		return nil
	}

	sdata := event.StructuredData()
	sdataJSON, err := json.Marshal(sdata)
	if err != nil {
		return err
	}
	hostname, _ := os.Hostname()

	_, err = s.db.Exec(`
		INSERT INTO messages (facility, severity, timestamp, hostname, appname, procid, msgid, actor, client_ip, result, sdata, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		event.Facility(),
		int(event.Severity()),
		time.Now().UTC(),
		hostname,
		AppName,
		strconv.Itoa(os.Getpid()),
		event.MessageID(),
		nullable(sdata[SDIDAuth]["user"]),
		nullable(sdata[SDIDClient]["ip"]),
		sdata[SDIDAction]["result"],
		sdataJSON,
		event.Message(),
	)
	return err
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
