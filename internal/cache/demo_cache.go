package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"demosim/internal/model"
)

const demoCacheTTL = 30 * time.Minute

// DemoCache fronts the demo repository for reads of finished demos
type DemoCache interface {
	Set(ctx context.Context, demo *model.Demo) error
	Get(ctx context.Context, id string) (*model.Demo, error)
	Delete(ctx context.Context, id string) error
}

type demoCache struct {
	client *redis.Client
}

// NewDemoCache creates a Redis demo cache
func NewDemoCache(client *redis.Client) DemoCache {
	return &demoCache{
		client: client,
	}
}

func (c *demoCache) Set(ctx context.Context, demo *model.Demo) error {
	data, err := json.Marshal(demo)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "demo:"+demo.ID, data, demoCacheTTL).Err()
}

func (c *demoCache) Get(ctx context.Context, id string) (*model.Demo, error) {
	data, err := c.client.Get(ctx, "demo:"+id).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var demo model.Demo
	err = json.Unmarshal([]byte(data), &demo)
	return &demo, err
}

func (c *demoCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, "demo:"+id).Err()
}
