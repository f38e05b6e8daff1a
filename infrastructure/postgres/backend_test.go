package postgres

import (
	"context"
	"os"
	"testing"

	"campusconnect/infrastructure/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *Backend {
	t.Helper()
	connStr := os.Getenv("GOOSE_DBSTRING")
	if connStr == "" {
		t.Skip("GOOSE_DBSTRING not set; skipping Postgres backend tests")
	}

	db, err := Open(context.Background(), connStr)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Exec(`DELETE FROM kv_store WHERE key LIKE 'test_%'`)
		db.Close()
	})
	return NewBackend(db)
}

func TestBackend_GetMissing(t *testing.T) {
	b := openTestDB(t)

	_, err := b.Get(context.Background(), "test_missing")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestBackend_SetOverwrites(t *testing.T) {
	b := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "test_snapshot", `{"version":1}`))
	require.NoError(t, b.Set(ctx, "test_snapshot", `{"version":2}`))

	got, err := b.Get(ctx, "test_snapshot")
	require.NoError(t, err)
	assert.Equal(t, `{"version":2}`, got)
}
