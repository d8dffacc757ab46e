// Package dbtest opens a migrated in-memory SQLite store for tests.
package dbtest

import (
	"testing"

	"music_library/internal/db"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a fresh in-memory database with all tables migrated.
// The pool is pinned to one connection so every query sees the same memory database.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := db.Config()
	cfg.Logger = logger.Default.LogMode(logger.Silent)
	conn, err := gorm.Open(sqlite.Open(":memory:"), cfg)
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(conn), "failed to run migrations")

	t.Cleanup(func() { sqlDB.Close() })
	return conn
}
