package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/NehaKotwal/tinyurl/internal/metrics"
	"github.com/NehaKotwal/tinyurl/internal/middleware"
	"github.com/NehaKotwal/tinyurl/internal/ratelimit"
)

// RouterConfig wires the handler into its middleware chain.
type RouterConfig struct {
	Handler   *Handler
	Logger    *zap.Logger
	Collector metrics.Collector
	Limiter   *ratelimit.PerKeyLimiter // nil disables per-client limiting
	Tracing   bool

	// Process-wide ceiling ahead of the per-client buckets. A zero
	// GlobalRPS disables it.
	GlobalRPS   float64
	GlobalBurst int
}

// NewRouter builds the chi router with the full middleware chain. The
// order matters: tracing wraps everything so downstream middleware runs
// inside the span, metrics and logging observe the final status, and
// rate limiting rejects before any handler work happens.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	if cfg.Tracing {
		r.Use(middleware.Tracing())
	}
	if cfg.Collector != nil {
		r.Use(middleware.Metrics(cfg.Collector))
	}
	if cfg.Logger != nil {
		r.Use(middleware.Logging(cfg.Logger, middleware.WithLoggingSkipPaths("/health", "/metrics")))
	}
	if cfg.GlobalRPS > 0 {
		r.Use(middleware.GlobalRateLimit(cfg.GlobalRPS, cfg.GlobalBurst))
	}
	if cfg.Limiter != nil {
		opts := []middleware.RateLimitOption{
			middleware.WithSkipPaths("/health", "/metrics"),
		}
		if cfg.Logger != nil {
			opts = append(opts, middleware.WithRateLimitLogger(cfg.Logger))
		}
		if cfg.Collector != nil {
			opts = append(opts, middleware.WithRateLimitCollector(cfg.Collector))
		}
		r.Use(middleware.RateLimit(cfg.Limiter, opts...))
	}

	h := cfg.Handler

	r.Route("/api", func(r chi.Router) {
		r.Post("/shorten", h.Shorten)
		r.Get("/stats", h.Summary)
		r.Get("/urls", h.List)
		r.Route("/urls/{shortCode}", func(r chi.Router) {
			r.Get("/stats", h.Stats)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
		})
	})

	r.Get("/health", h.Health)
	if cfg.Collector != nil {
		if pc, ok := cfg.Collector.(*metrics.PrometheusCollector); ok {
			r.Handle("/metrics", pc.Handler())
		}
	}

	r.Get("/{shortCode}", h.Redirect)

	return r
}
