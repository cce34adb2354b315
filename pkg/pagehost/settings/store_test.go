package settings

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.TryGet(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Remove(ctx, "missing"), "removing an absent key is a no-op")

	require.NoError(t, store.Set(ctx, "Suspend_Data", []byte("2026-03-01T12:00:00Z")))
	v, ok, err := store.TryGet(ctx, "Suspend_Data")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2026-03-01T12:00:00Z", string(v))

	require.NoError(t, store.Set(ctx, "Suspend_Data", []byte("2026-03-02T08:30:00Z")))
	v, _, err = store.TryGet(ctx, "Suspend_Data")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02T08:30:00Z", string(v))

	require.NoError(t, store.Remove(ctx, "Suspend_Data"))
	_, ok, err = store.TryGet(ctx, "Suspend_Data")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	value := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", value))
	value[0] = 'x'

	got, _, err := m.TryGet(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
	assert.Equal(t, 1, m.Len())
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck

	exerciseStore(t, store)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "settings.db")

	store, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "Execution_State", []byte("suspended")))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close() //nolint:errcheck

	v, ok, err := reopened.TryGet(ctx, "Execution_State")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "suspended", string(v))
}

func TestClosedSQLiteStore(t *testing.T) {
	var s *SQLite
	_, _, err := s.TryGet(context.Background(), "k")
	assert.ErrorIs(t, err, ErrClosed)
}
