package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLazyReset(t *testing.T) {
	store := NewMemoryRateLimitStore()
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Incr(ctx, "k", time.Hour, now))
	require.NoError(t, store.Incr(ctx, "k", time.Hour, now))

	count, resetAt, err := store.Count(ctx, "k", now)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, now.Add(time.Hour), resetAt)

	// Expired windows read as zero without being touched
	later := now.Add(2 * time.Hour)
	count, _, err = store.Count(ctx, "k", later)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Incrementing after expiry starts a fresh window
	require.NoError(t, store.Incr(ctx, "k", time.Hour, later))
	count, resetAt, err = store.Count(ctx, "k", later)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, later.Add(time.Hour), resetAt)
}

func TestMemoryStoreSweepEvictsExpired(t *testing.T) {
	store := NewMemoryRateLimitStore()
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Incr(ctx, "old", time.Minute, now))
	require.NoError(t, store.Incr(ctx, "fresh", time.Hour, now))

	require.NoError(t, store.Sweep(ctx, now.Add(10*time.Minute)))

	store.mu.Lock()
	_, oldKept := store.windows["old"]
	_, freshKept := store.windows["fresh"]
	store.mu.Unlock()
	assert.False(t, oldKept)
	assert.True(t, freshKept)
}
