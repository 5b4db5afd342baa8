// Package redis stores search responses in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/JakeFAU/spirits-scraper/internal/cache"
)

// KeyPrefix namespaces every key written by the cache.
const KeyPrefix = "spirits:search:"

// client is the subset of *goredis.Client the cache uses.
type client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Ping(ctx context.Context) *goredis.StatusCmd
	Close() error
}

// Options configures a Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Cache implements spirits.Cache on Redis.
type Cache struct {
	client client
}

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, opts Options) (*Cache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &Cache{client: rdb}, nil
}

// NewWithClient wraps an existing client (used in tests).
func NewWithClient(c client) *Cache {
	return &Cache{client: c}
}

// Get returns the value for key or cache.ErrMiss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, cache.ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return b, nil
}

// Set stores value under key for ttl. A zero ttl keeps the key until evicted.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, KeyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}
