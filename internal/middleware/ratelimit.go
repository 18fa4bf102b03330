package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/medportal/medportal/internal/cache"
	"github.com/medportal/medportal/internal/metrics"
)

// MsgRateLimited is the body message for 429 responses.
const MsgRateLimited = "Too many requests. Please try again later."

// Limiter consumes one request from a client's budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (*cache.RateLimitResult, error)
}

// RateLimitConfig configures RateLimitAuth.
type RateLimitConfig struct {
	Limiter Limiter
	Logger  *slog.Logger
	Metrics metrics.Recorder
}

// RateLimitAuth limits requests per client IP. It must run after chi's RealIP
// so that RemoteAddr holds the client address. Limiter errors fail open.
func RateLimitAuth(cfg RateLimitConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rec := cfg.Metrics
	if rec == nil {
		rec = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			ip := ClientIP(r)
			result, err := cfg.Limiter.Allow(r.Context(), ip)
			if err != nil {
				logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, result)

			if !result.Allowed {
				rec.IncRateLimited()
				retry := retryAfterSeconds(result)
				logger.Warn("rate limit exceeded",
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int("retry_after_seconds", retry),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Retry-After", strconv.Itoa(retry))
				writeJSONError(w, http.StatusTooManyRequests, MsgRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func setRateLimitHeaders(w http.ResponseWriter, result *cache.RateLimitResult) {
	if result.Limit <= 0 {
		return
	}
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

// retryAfterSeconds rounds up and never returns less than one second.
func retryAfterSeconds(result *cache.RateLimitResult) int {
	secs := int(math.Ceil(result.RetryAfter.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// ClientIP returns the host part of RemoteAddr, which chi's RealIP middleware
// has already rewritten for proxied requests.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
