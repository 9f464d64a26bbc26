package tariffs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "tarifas:activas"

// Cache stores the full active tariff table in Redis. Lookups match against
// the cached slice; writes invalidate the key so the next lookup reloads.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache builds a Cache with the given expiry.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached table; the second result is false on a cache miss.
func (c *Cache) Get(ctx context.Context) ([]Entry, bool, error) {
	payload, err := c.client.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var entries []Entry
	if err := json.Unmarshal(payload, &entries); err != nil {
		// Corrupt payload: treat as a miss and let the loader overwrite it.
		return nil, false, nil
	}
	return entries, true, nil
}

// Set replaces the cached table.
func (c *Cache) Set(ctx context.Context, entries []Entry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey, payload, c.ttl).Err()
}

// Invalidate drops the cached table.
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, cacheKey).Err()
}
