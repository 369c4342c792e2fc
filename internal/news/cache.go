package news

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const latestCacheKey = "news:latest"

// Cache keeps the latest merged article list in Redis.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewCache(client redis.UniversalClient, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached list, or ok=false on a miss.
func (c *Cache) Get(ctx context.Context) ([]Article, bool, error) {
	data, err := c.client.Get(ctx, latestCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var articles []Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, false, err
	}
	return articles, true, nil
}

func (c *Cache) Set(ctx context.Context, articles []Article) error {
	data, err := json.Marshal(articles)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, latestCacheKey, data, c.ttl).Err()
}
