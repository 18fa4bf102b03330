// Package cache wraps the Redis client used for auth rate limiting.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyNamespace prefixes every key this service writes, so a shared Redis can
// be inspected or flushed per service.
const keyNamespace = "medportal:"

const (
	defaultPoolSize = 5
	clientName      = "medportal"
)

// Options tunes the Redis connection pool. Zero values keep the defaults.
type Options struct {
	PoolSize int
}

// Cache holds the Redis client shared by the rate limiter and the readiness check.
type Cache struct {
	client *redis.Client
}

// New parses redisURL, applies opts and verifies the connection with PING.
// The client is closed again when the ping fails.
func New(ctx context.Context, redisURL string, opts Options) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	applyOptions(opt, opts)

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Cache{client: client}, nil
}

func applyOptions(opt *redis.Options, opts Options) {
	opt.PoolSize = defaultPoolSize
	if opts.PoolSize > 0 {
		opt.PoolSize = opts.PoolSize
	}
	opt.MinIdleConns = 1
	opt.PoolTimeout = 2 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute
	// Shows up in CLIENT LIST next to other services on the same instance.
	if opt.ClientName == "" {
		opt.ClientName = clientName
	}
}

// Key builds a namespaced key, e.g. Key("ratelimit", "auth", fp) is
// "medportal:ratelimit:auth:<fp>".
func Key(parts ...string) string {
	return keyNamespace + strings.Join(parts, ":")
}

// Ping checks Redis connectivity for /readyz.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client. Registered as a server shutdown hook.
func (c *Cache) Close() error {
	return c.client.Close()
}
