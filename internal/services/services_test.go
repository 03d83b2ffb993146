package services

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kosar/admin-be/internal/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.New("file::memory:")
	require.NoError(t, err)
	// A second connection would see its own empty in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}
