package middleware

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/NehaKotwal/tinyurl/internal/metrics"
	"github.com/NehaKotwal/tinyurl/internal/ratelimit"
)

// RateLimitConfig holds configuration for the per-client rate limiting
// middleware.
type RateLimitConfig struct {
	Limiter   *ratelimit.PerKeyLimiter
	Logger    *zap.Logger
	Collector metrics.Collector
	KeyFunc   func(*http.Request) string
	SkipPaths map[string]bool
}

// RateLimitOption is a functional option for rate limit configuration.
type RateLimitOption func(*RateLimitConfig)

// WithRateLimitLogger sets the logger used for rejected requests.
func WithRateLimitLogger(logger *zap.Logger) RateLimitOption {
	return func(c *RateLimitConfig) {
		c.Logger = logger
	}
}

// WithRateLimitCollector records rejections on the given collector.
func WithRateLimitCollector(collector metrics.Collector) RateLimitOption {
	return func(c *RateLimitConfig) {
		c.Collector = collector
	}
}

// WithKeyFunc sets a custom request key extractor.
func WithKeyFunc(fn func(*http.Request) string) RateLimitOption {
	return func(c *RateLimitConfig) {
		c.KeyFunc = fn
	}
}

// WithSkipPaths exempts the given paths from rate limiting.
func WithSkipPaths(paths ...string) RateLimitOption {
	return func(c *RateLimitConfig) {
		for _, p := range paths {
			c.SkipPaths[p] = true
		}
	}
}

// RateLimit enforces a per-client token bucket limit. Requests are keyed
// by client IP unless a custom KeyFunc is set. Allowed responses carry
// X-RateLimit-Limit, X-RateLimit-Remaining and X-RateLimit-Window
// headers; rejected requests get a 429 with a JSON body.
func RateLimit(limiter *ratelimit.PerKeyLimiter, opts ...RateLimitOption) func(http.Handler) http.Handler {
	config := &RateLimitConfig{
		Limiter:   limiter,
		Logger:    zap.NewNop(),
		KeyFunc:   ClientIP,
		SkipPaths: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(config)
	}

	window := int(config.Limiter.Window() / time.Second)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.SkipPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			key := config.KeyFunc(r)
			if !config.Limiter.Allow(key) {
				config.Logger.Warn("rate limit exceeded",
					zap.String("client", key),
					zap.String("path", r.URL.Path),
				)
				if config.Collector != nil {
					config.Collector.RecordRateLimited(r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprintf(w, `{"detail":"Rate limit exceeded. Try again in %d seconds."}`, window)
				return
			}

			// Quota headers go on allowed responses only.
			h := w.Header()
			h.Set("X-RateLimit-Limit", fmt.Sprintf("%d", config.Limiter.Limit()))
			h.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", config.Limiter.Remaining(key)))
			h.Set("X-RateLimit-Window", fmt.Sprintf("%d", window))

			next.ServeHTTP(w, r)
		})
	}
}

// GlobalRateLimit applies a single process-wide limit ahead of the
// per-client buckets, shielding the backend from aggregate bursts.
func GlobalRateLimit(ratePerSec float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(ratePerSec), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprint(w, `{"detail":"Server is busy. Try again later."}`)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
