package session

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muneeb-ds/ai-travel-advisor/internal/config"
	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

func testStoreBehavior(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "thread-1")
	assert.Equal(t, types.SESSION_NOT_FOUND, types.CodeOf(err))

	r1, err := store.Put(ctx, "thread-1", json.RawMessage(`{"plan":"v1"}`))
	require.NoError(t, err)
	assert.Equal(t, 1, r1.Version)
	assert.False(t, r1.UpdatedAt.IsZero())

	r2, err := store.Put(ctx, "thread-1", json.RawMessage(`{"plan":"v2"}`))
	require.NoError(t, err)
	assert.Equal(t, 2, r2.Version)

	got, err := store.Get(ctx, "thread-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"plan":"v2"}`, string(got.Payload))
	assert.Equal(t, 2, got.Version)

	// Threads are independent.
	other, err := store.Put(ctx, "thread-2", json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 1, other.Version)

	require.NoError(t, store.Delete(ctx, "thread-1"))
	_, err = store.Get(ctx, "thread-1")
	assert.Equal(t, types.SESSION_NOT_FOUND, types.CodeOf(err))
	require.NoError(t, store.Delete(ctx, "thread-1"))

	_, err = store.Put(ctx, "", nil)
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	testStoreBehavior(t, NewMemoryStore(time.Hour))
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"), time.Hour)
	require.NoError(t, err)
	defer store.Close()

	testStoreBehavior(t, store)
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	store := NewMemoryStore(30 * time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	_, err := store.Put(context.Background(), "thread-1", json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	now = now.Add(31 * time.Minute)
	_, err = store.Get(context.Background(), "thread-1")
	assert.Equal(t, types.SESSION_NOT_FOUND, types.CodeOf(err))
	assert.Equal(t, 0, store.Len())

	// A fresh Put after expiry starts versioning over.
	r, err := store.Put(context.Background(), "thread-1", json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 1, r.Version)
}

func TestSQLiteStore_TTLExpiry(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"), 30*time.Minute)
	require.NoError(t, err)
	defer store.Close()

	now := time.Now()
	store.now = func() time.Time { return now }

	_, err = store.Put(context.Background(), "thread-1", json.RawMessage(`{}`))
	require.NoError(t, err)

	now = now.Add(31 * time.Minute)
	_, err = store.Get(context.Background(), "thread-1")
	assert.Equal(t, types.SESSION_NOT_FOUND, types.CodeOf(err))
}

func TestNewStore_Backends(t *testing.T) {
	store, err := NewStore(config.SessionConfig{Backend: "memory", TTL: time.Hour})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = NewStore(config.SessionConfig{
		Backend: "sqlite",
		DBPath:  filepath.Join(t.TempDir(), "s.db"),
		TTL:     time.Hour,
	})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	store.Close()

	_, err = NewStore(config.SessionConfig{Backend: "redis"})
	assert.Error(t, err)
}
