// Package cache provides a read-through Redis cache for entity and listing
// lookups. A nil client degrades every operation to a loader passthrough, so
// callers never need to special-case a missing Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps Redis based caching for entity rows and listing pages.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New instantiates the cache helper.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Key joins key parts with the ":" separator.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// FetchJSON loads a cached value or populates it using the loader.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	return c.fetch(ctx, "", key, dest, loader)
}

// FetchListJSON behaves like FetchJSON but also records the key in the given
// tracking set, so InvalidateList can drop every cached page of a listing.
func (c *Cache) FetchListJSON(ctx context.Context, setKey, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	return c.fetch(ctx, setKey, key, dest, loader)
}

func (c *Cache) fetch(ctx context.Context, setKey, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if err != redis.Nil {
		return err
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	if setKey != "" {
		if err := c.client.SAdd(ctx, setKey, key).Err(); err != nil {
			return err
		}
	}
	return json.Unmarshal(raw, dest)
}

// Invalidate removes individual keys.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// InvalidateList removes every key recorded in the tracking set, then the set itself.
func (c *Cache) InvalidateList(ctx context.Context, setKey string) error {
	if c == nil || c.client == nil {
		return nil
	}
	members, err := c.client.SMembers(ctx, setKey).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	if len(members) > 0 {
		if err := c.client.Del(ctx, members...).Err(); err != nil {
			return err
		}
	}
	return c.client.Del(ctx, setKey).Err()
}
