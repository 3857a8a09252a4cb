// Package cache fronts the durable artifact store with a distributed
// cache: identical sources, hashed the same way, should not be
// recompiled by every service replica.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache maps a source content hash to its disassembled Code text.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to the Redis instance at addr. ttl of 0 means entries
// never expire.
func New(addr string, ttl time.Duration) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// Ping verifies the connection is alive.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error { return c.client.Close() }

func key(hash string) string { return "gobstones:compile:" + hash }

// Get returns the cached disassembly for hash, or ("", false, nil) on a
// cache miss.
func (c *Cache) Get(ctx context.Context, hash string) (string, bool, error) {
	val, err := c.client.Get(ctx, key(hash)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache: get %s: %w", hash, err)
	}
	return val, true, nil
}

// Set stores disasm under hash.
func (c *Cache) Set(ctx context.Context, hash, disasm string) error {
	if err := c.client.Set(ctx, key(hash), disasm, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", hash, err)
	}
	return nil
}

// Invalidate removes a cached entry, used when the symbol table or
// primitives catalog it was compiled against changes.
func (c *Cache) Invalidate(ctx context.Context, hash string) error {
	if err := c.client.Del(ctx, key(hash)).Err(); err != nil {
		return fmt.Errorf("cache: invalidate %s: %w", hash, err)
	}
	return nil
}
