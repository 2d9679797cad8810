package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/gateway-admin/pkg/model"
)

func TestDialect(t *testing.T) {
	tests := []struct {
		dsn     string
		want    string
		wantErr bool
	}{
		{dsn: "postgres://u:p@localhost:5432/gw", want: DialectPostgres},
		{dsn: "postgresql://localhost/gw", want: DialectPostgres},
		{dsn: "host=localhost dbname=gw sslmode=disable", want: DialectPostgres},
		{dsn: "sqlite:///var/lib/gateway.db", want: DialectSQLite},
		{dsn: "file:gw.db?cache=shared", want: DialectSQLite},
		{dsn: ":memory:", want: DialectSQLite},
		{dsn: "mysql://localhost/gw", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			got, err := Dialect(tt.dsn)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "/var/lib/gateway.db?_pragma=foreign_keys(1)", sqliteDSN("sqlite:///var/lib/gateway.db"))
	assert.Equal(t, ":memory:?_pragma=foreign_keys(1)", sqliteDSN("sqlite://"))
	assert.Equal(t, ":memory:?_pragma=foreign_keys(1)", sqliteDSN(":memory:"))
	assert.Equal(t, "file:gw.db?cache=shared&_pragma=foreign_keys(1)", sqliteDSN("file:gw.db?cache=shared"))
	assert.Equal(t, "gw.db?_pragma=foreign_keys(0)", sqliteDSN("gw.db?_pragma=foreign_keys(0)"))
}

func TestConnectRequiresURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := Connect(Config{})
	assert.Error(t, err)
}

func TestOpenMemory(t *testing.T) {
	database, err := OpenMemory()
	require.NoError(t, err)

	for _, m := range model.All() {
		assert.True(t, database.Migrator().HasTable(m), "missing table for %T", m)
	}
}

func TestOpenMemoryEnforcesGrantCredential(t *testing.T) {
	database, err := OpenMemory()
	require.NoError(t, err)

	err = database.Create(&model.ResourceAccess{
		ResourceType:    "COMPUTE",
		ResourceID:      "res1",
		OwnerID:         "gw1",
		OwnerType:       "GATEWAY",
		GatewayID:       "gw1",
		CredentialToken: "missing",
		Enabled:         true,
	}).Error
	require.Error(t, err)
	assert.Contains(t, strings.ToLower(err.Error()), "foreign key")
}
