package cache

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medportal/medportal/internal/auth"
)

// RateLimitResult is the outcome of one token bucket check.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// tokenBucketScript refills and consumes in one atomic step.
// Returns {allowed, retry_after_seconds, remaining_tokens}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])
	local burst = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	local data = redis.call('HMGET', key, 'tokens', 'ts')
	local tokens = tonumber(data[1]) or burst
	local ts = tonumber(data[2]) or now

	tokens = math.min(burst, tokens + math.max(0, now - ts) * rate)

	local allowed = 0
	local retry_after = 0
	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HSET', key, 'tokens', tokens, 'ts', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// AuthLimiter is a per-client token bucket for the login and signup endpoints.
type AuthLimiter struct {
	cache *Cache
	rate  float64 // tokens per second
	burst int
	ttl   int // seconds
}

// NewAuthLimiter allows ratePerMinute sustained requests per client with the given burst.
func NewAuthLimiter(c *Cache, ratePerMinute, burst int) (*AuthLimiter, error) {
	if ratePerMinute <= 0 || burst <= 0 {
		return nil, fmt.Errorf("rate limit must be positive: rpm=%d burst=%d", ratePerMinute, burst)
	}

	rate := float64(ratePerMinute) / 60.0
	// Keep keys until a drained bucket would be full again.
	ttl := int(math.Ceil(float64(burst)/rate)) + 1

	return &AuthLimiter{cache: c, rate: rate, burst: burst, ttl: ttl}, nil
}

// Allow consumes one token for clientIP. The IP is hashed before it becomes part
// of a Redis key. Redis errors are returned to the caller, which decides whether
// to fail open.
func (l *AuthLimiter) Allow(ctx context.Context, clientIP string) (*RateLimitResult, error) {
	now := time.Now()
	key := Key("ratelimit", "auth", auth.Fingerprint(clientIP))

	res, err := tokenBucketScript.Run(ctx, l.cache.client,
		[]string{key},
		l.rate, l.burst, now.Unix(), l.ttl,
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("run token bucket: %w", err)
	}

	return l.result(now, res), nil
}

func (l *AuthLimiter) result(now time.Time, res []int64) *RateLimitResult {
	remaining := res[2]
	// Time until the bucket is full again.
	missing := float64(int64(l.burst) - remaining)
	resetAt := now.Add(time.Duration(missing / l.rate * float64(time.Second)))

	return &RateLimitResult{
		Allowed:    res[0] == 1,
		Limit:      l.burst,
		Remaining:  remaining,
		ResetAt:    resetAt,
		RetryAfter: time.Duration(res[1]) * time.Second,
	}
}
