package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demosim/internal/model"
)

func TestDemoCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	c := NewDemoCache(client)
	ctx := context.Background()

	demo := &model.Demo{
		ID:         "demo-1",
		ProjectID:  "proj-a",
		Objectives: []string{"Understand daily habits"},
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, c.Set(ctx, demo))

	got, err := c.Get(ctx, "demo-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, demo.ID, got.ID)
	assert.Equal(t, demo.ProjectID, got.ProjectID)
}

func TestDemoCacheMissReturnsNil(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	got, err := NewDemoCache(client).Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, got)
}
