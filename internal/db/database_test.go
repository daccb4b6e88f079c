package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbangting/auth/internal/models"
)

func TestOpen_SQLiteMemoryAndMigrate(t *testing.T) {
	db, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable(&models.User{}))
	assert.True(t, db.Migrator().HasTable(&models.RefreshToken{}))
}

func TestOpen_Errors(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), DriverPgx, "")
	require.Error(t, err)

	_, err = Open(context.Background(), "mongo", "whatever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown DB_DRIVER")
}
