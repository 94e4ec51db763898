// Package rediscache implements the dedup gate's Cache contract over
// redis/go-redis/v9, the Redis client used elsewhere in the retrieved
// corpus's service stacks for shared, process-external state.
package rediscache

import (
	"context"
	"errors"
	"fmt"

	"github.com/kestrelai/ragpipe/node"
	"github.com/redis/go-redis/v9"
)

// Cache implements dedup.Cache over a Redis SET-based presence check.
type Cache struct {
	client *redis.Client
}

// New wraps an existing *redis.Client.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Get implements dedup.Cache.
func (c *Cache) Get(ctx context.Context, fp node.Fingerprint) (bool, error) {
	n, err := c.client.Exists(ctx, string(fp)).Result()
	if err != nil {
		return false, fmt.Errorf("rediscache: get failed: %w", err)
	}
	return n > 0, nil
}

// Set implements dedup.Cache.
func (c *Cache) Set(ctx context.Context, fp node.Fingerprint) error {
	if err := c.client.Set(ctx, string(fp), 1, 0).Err(); err != nil {
		return fmt.Errorf("rediscache: set failed: %w", err)
	}
	return nil
}

// Clear implements dedup.Cache. Redis has no namespaced-prefix delete
// primitive, so Clear scans and deletes keys under prefix: in batches.
func (c *Cache) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, "*", 1000).Result()
		if err != nil {
			return fmt.Errorf("rediscache: scan failed: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil && !errors.Is(err, redis.Nil) {
				return fmt.Errorf("rediscache: delete failed: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return nil
}
