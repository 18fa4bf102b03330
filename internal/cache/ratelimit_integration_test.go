//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medportal/medportal/internal/testutil"
)

func TestAuthLimiter_Integration(t *testing.T) {
	redisURL := testutil.RequireEnv(t, "TEST_REDIS_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := New(ctx, redisURL, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	limiter, err := NewAuthLimiter(c, 1, 3)
	if err != nil {
		t.Fatalf("NewAuthLimiter: %v", err)
	}

	// Unique per run so leftover buckets do not interfere.
	ip := "203.0.113." + uuid.NewString()

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, ip)
		if err != nil {
			t.Fatalf("Allow #%d: %v", i+1, err)
		}
		if !res.Allowed {
			t.Fatalf("request %d should be allowed within burst", i+1)
		}
		if res.Remaining != int64(2-i) {
			t.Errorf("request %d: remaining = %d, want %d", i+1, res.Remaining, 2-i)
		}
	}

	res, err := limiter.Allow(ctx, ip)
	if err != nil {
		t.Fatalf("Allow over burst: %v", err)
	}
	if res.Allowed {
		t.Fatal("request over burst should be denied")
	}
	if res.RetryAfter <= 0 {
		t.Errorf("RetryAfter = %v, want positive", res.RetryAfter)
	}

	other, err := limiter.Allow(ctx, "198.51.100."+uuid.NewString())
	if err != nil {
		t.Fatalf("Allow other client: %v", err)
	}
	if !other.Allowed {
		t.Error("buckets must be per client")
	}
}
