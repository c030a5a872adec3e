package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// cache wraps the Redis client with nil-safe helpers so every service runs
// unchanged when Redis is unavailable.
type cache struct {
	rdb *redis.Client
}

func (c cache) get(ctx context.Context, key string) (string, error) {
	if c.rdb == nil {
		return "", fmt.Errorf("redis not available")
	}
	return c.rdb.Get(ctx, key).Result()
}

func (c cache) set(ctx context.Context, key, value string, ttl time.Duration) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Error("failed to set cache", "key", key, "error", err)
	}
}

func (c cache) del(ctx context.Context, keys ...string) {
	if c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, keys...)
}
