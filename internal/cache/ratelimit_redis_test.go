package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisRateLimitStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisRateLimitStore(client), mr
}

func TestRedisStoreCountsWithinWindow(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Incr(ctx, "k", time.Minute, now))
	require.NoError(t, store.Incr(ctx, "k", time.Minute, now))

	count, resetAt, err := store.Count(ctx, "k", now)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.True(t, resetAt.After(now))
}

func TestRedisStoreWindowExpires(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Incr(ctx, "k", time.Minute, now))
	mr.FastForward(2 * time.Minute)

	count, _, err := store.Count(ctx, "k", now)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRedisStoreMissingKeyReadsZero(t *testing.T) {
	store, _ := newRedisStore(t)

	count, resetAt, err := store.Count(context.Background(), "absent", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.True(t, resetAt.IsZero())
}
