package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/studyflow/backend/repository"
)

type insightCache struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewInsightCache creates a Redis-backed cache for generated insight
// statements, keyed per owner.
func NewInsightCache(client *redislib.Client, ttl time.Duration) repository.InsightCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &insightCache{
		client: client,
		prefix: "insights:",
		ttl:    ttl,
	}
}

func (c *insightCache) Get(ctx context.Context, userID string) ([]string, error) {
	result, err := c.client.Get(ctx, c.key(userID)).Result()
	if err != nil {
		if err == redislib.Nil {
			return nil, nil
		}
		return nil, err
	}

	var statements []string
	if err := json.Unmarshal([]byte(result), &statements); err != nil {
		return nil, err
	}
	return statements, nil
}

func (c *insightCache) Set(ctx context.Context, userID string, statements []string) error {
	payload, err := json.Marshal(statements)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(userID), payload, c.ttl).Err()
}

func (c *insightCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, c.key(userID)).Err()
}

func (c *insightCache) key(userID string) string {
	return fmt.Sprintf("%s%s", c.prefix, userID)
}
