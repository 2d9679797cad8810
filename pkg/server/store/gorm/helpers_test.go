package gorm

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/gateway-admin/pkg/db"
	"github.com/doodlesbykumbi/gateway-admin/pkg/model"
	"github.com/doodlesbykumbi/gateway-admin/pkg/secretbox"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return database
}

// setupGrantsDB returns an in-memory database holding a catalog entry for
// each token, so grants can reference them.
func setupGrantsDB(t *testing.T, tokens ...string) *gorm.DB {
	t.Helper()
	database := setupTestDB(t)
	for _, token := range tokens {
		require.NoError(t, database.Create(&model.Credential{
			Token:     token,
			GatewayID: "gw1",
			OwnerID:   "gw1",
			OwnerType: "GATEWAY",
			Name:      token,
			Type:      "SSH",
		}).Error)
	}
	return database
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 mockDB,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	require.NoError(t, err)
	return gormDB, mock
}

func testCipher(t *testing.T) secretbox.SymmetricCipher {
	t.Helper()
	key := make([]byte, secretbox.KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	cipher, err := secretbox.NewSymmetric(key)
	require.NoError(t, err)
	return cipher
}
