package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, err := b.Get(ctx, "student_portal_db")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.Set(ctx, "student_portal_db", `{"users":[]}`))
	got, err := b.Get(ctx, "student_portal_db")
	require.NoError(t, err)
	assert.Equal(t, `{"users":[]}`, got)

	require.NoError(t, b.Set(ctx, "student_portal_db", `{}`))
	got, err = b.Get(ctx, "student_portal_db")
	require.NoError(t, err)
	assert.Equal(t, `{}`, got)
}

func TestMemory(t *testing.T) {
	exerciseBackend(t, NewMemory())
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFile(dir)
	require.NoError(t, err)

	exerciseBackend(t, b)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "student_portal_db.json", entries[0].Name())
}

func TestFile_SanitizesKeys(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFile(dir)
	require.NoError(t, err)

	require.NoError(t, b.Set(context.Background(), "../escape/key", "x"))
	_, err = os.Stat(filepath.Join(dir, ".._escape_key.json"))
	assert.NoError(t, err)
}

func TestMemory_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMemory()
	assert.ErrorIs(t, m.Set(ctx, "k", "v"), context.Canceled)
	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithLatency(t *testing.T) {
	m := NewMemory()
	assert.Same(t, m, WithLatency(m, 0), "zero latency must not wrap")

	b := WithLatency(m, 20*time.Millisecond)
	require.NoError(t, b.Set(context.Background(), "k", "v"))

	start := time.Now()
	v, err := b.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestWithLatency_Cancelled(t *testing.T) {
	b := WithLatency(NewMemory(), time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := b.Get(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
