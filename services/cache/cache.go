package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"phimhub/config"
)

// Cache is an optional Redis-backed response cache. With no Redis address
// configured every method is a cheap no-op, so callers never branch on
// whether caching is on. Cache failures are logged and treated as misses;
// the upstreams remain the source of truth.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New builds the cache from settings. An empty RedisAddr disables it.
func New(cfg config.CacheSettings) *Cache {
	c := &Cache{ttl: time.Duration(cfg.TTLMinutes) * time.Minute}
	if cfg.RedisAddr == "" {
		return c
	}
	c.rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return c
}

// Enabled reports whether a Redis backend is configured.
func (c *Cache) Enabled() bool { return c != nil && c.rdb != nil }

// GetJSON loads key into v. Returns false on miss, disabled cache, or any
// backend/decode failure.
func (c *Cache) GetJSON(ctx context.Context, key string, v any) bool {
	if !c.Enabled() {
		return false
	}
	payload, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[cache] get %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(payload, v); err != nil {
		log.Printf("[cache] decode %s: %v", key, err)
		return false
	}
	return true
}

// SetJSON stores v under key with the configured TTL. Failures are logged
// and dropped.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) {
	if !c.Enabled() {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("[cache] encode %s: %v", key, err)
		return
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		log.Printf("[cache] set %s: %v", key, err)
	}
}

// Close releases the Redis connection if one is open.
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}
