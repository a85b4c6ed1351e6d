package ratelimit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, window time.Duration, limit int) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "attempts.db"), window, limit)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAllowWithinCeiling(t *testing.T) {
	store := openTestStore(t, 5*time.Minute, 5)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		ok, err := store.Allow(ctx, "203.0.113.9", now.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d should be admitted", i+1)
	}
}

func TestRejectsSixthInWindow(t *testing.T) {
	store := openTestStore(t, 5*time.Minute, 5)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		ok, err := store.Allow(ctx, "203.0.113.9", now.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, err := store.Allow(ctx, "203.0.113.9", now.Add(10*time.Second))
	require.NoError(t, err)
	assert.False(t, ok, "sixth attempt inside the window must be rejected")

	// Once the original burst ages out, the source is admitted again.
	ok, err = store.Allow(ctx, "203.0.113.9", now.Add(6*time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSourcesAreIndependent(t *testing.T) {
	store := openTestStore(t, 5*time.Minute, 1)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	ok, err := store.Allow(ctx, "203.0.113.9", now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = store.Allow(ctx, "203.0.113.9", now.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Allow(ctx, "198.51.100.7", now.Add(2*time.Second))
	require.NoError(t, err)
	assert.True(t, ok, "a busy neighbor must not throttle other sources")
}

func TestSourceKeysAreHashed(t *testing.T) {
	key := sourceKey("203.0.113.9")
	assert.NotContains(t, key, "203.0.113.9")
	assert.Len(t, key, 32)
	assert.Equal(t, key, sourceKey("203.0.113.9"), "hashing must be stable")
}
