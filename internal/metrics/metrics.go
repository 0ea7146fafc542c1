// Package metrics provides Prometheus metrics for the URL shortener.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector defines the interface for metrics collection.
type Collector interface {
	// RecordRequest records a completed HTTP request with duration and status.
	RecordRequest(route string, status string, duration time.Duration)

	// RecordActiveRequests updates the in-flight requests gauge.
	RecordActiveRequests(route string, delta int)

	// RecordRateLimited counts a request rejected by the rate limiter.
	RecordRateLimited(route string)

	// SetCacheStats publishes the URL cache gauges.
	SetCacheStats(size int, hitRate float64)

	// SetLimiterBuckets publishes the tracked rate-limit bucket count.
	SetLimiterBuckets(n int)

	// GetRegistry returns the prometheus registry.
	GetRegistry() *prometheus.Registry
}

// Config holds configuration for metrics collection.
type Config struct {
	Namespace        string
	Subsystem        string
	EnableHistogram  bool
	HistogramBuckets []float64
	ConstLabels      map[string]string
}

// DefaultConfig returns the default metrics configuration.
func DefaultConfig() *Config {
	return &Config{
		Namespace:       "tinyurl",
		Subsystem:       "server",
		EnableHistogram: true,
		HistogramBuckets: []float64{
			0.001, // 1ms
			0.005, // 5ms
			0.01,  // 10ms
			0.025, // 25ms
			0.05,  // 50ms
			0.1,   // 100ms
			0.25,  // 250ms
			0.5,   // 500ms
			1.0,   // 1s
			2.5,   // 2.5s
		},
		ConstLabels: make(map[string]string),
	}
}

// ConfigOption is a function that configures a Config.
type ConfigOption func(*Config)

// WithNamespace sets the namespace for metrics.
func WithNamespace(namespace string) ConfigOption {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the subsystem for metrics.
func WithSubsystem(subsystem string) ConfigOption {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithHistogramBuckets sets custom histogram buckets.
func WithHistogramBuckets(buckets []float64) ConfigOption {
	return func(c *Config) {
		c.HistogramBuckets = buckets
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels map[string]string) ConfigOption {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithoutHistogram disables histogram metrics.
func WithoutHistogram() ConfigOption {
	return func(c *Config) {
		c.EnableHistogram = false
	}
}

// PrometheusCollector implements Collector backed by a private registry.
type PrometheusCollector struct {
	config   *Config
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	activeRequests  *prometheus.GaugeVec
	rateLimited     *prometheus.CounterVec

	cacheSize      prometheus.Gauge
	cacheHitRate   prometheus.Gauge
	limiterBuckets prometheus.Gauge
}

// NewPrometheusCollector creates a new Prometheus metrics collector.
func NewPrometheusCollector(opts ...ConfigOption) *PrometheusCollector {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	p := &PrometheusCollector{
		config:   config,
		registry: prometheus.NewRegistry(),
	}
	p.initMetrics()
	return p
}

func (p *PrometheusCollector) initMetrics() {
	p.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of HTTP requests handled",
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"route", "status"},
	)

	if p.config.EnableHistogram {
		p.requestDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   p.config.Namespace,
				Subsystem:   p.config.Subsystem,
				Name:        "request_duration_seconds",
				Help:        "Histogram of HTTP request duration in seconds",
				Buckets:     p.config.HistogramBuckets,
				ConstLabels: p.config.ConstLabels,
			},
			[]string{"route", "status"},
		)
	}

	p.activeRequests = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "active_requests",
			Help:        "Number of HTTP requests currently in flight",
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"route"},
	)

	p.rateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "rate_limited_total",
			Help:        "Total number of requests rejected by the rate limiter",
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"route"},
	)

	p.cacheSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   p.config.Namespace,
		Subsystem:   "cache",
		Name:        "entries",
		Help:        "Number of entries in the URL cache",
		ConstLabels: p.config.ConstLabels,
	})

	p.cacheHitRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   p.config.Namespace,
		Subsystem:   "cache",
		Name:        "hit_rate",
		Help:        "URL cache hit rate as a percentage",
		ConstLabels: p.config.ConstLabels,
	})

	p.limiterBuckets = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   p.config.Namespace,
		Subsystem:   "ratelimit",
		Name:        "buckets",
		Help:        "Number of tracked rate-limit buckets",
		ConstLabels: p.config.ConstLabels,
	})

	p.registry.MustRegister(
		p.requestsTotal,
		p.activeRequests,
		p.rateLimited,
		p.cacheSize,
		p.cacheHitRate,
		p.limiterBuckets,
	)
	if p.config.EnableHistogram {
		p.registry.MustRegister(p.requestDuration)
	}
}

// RecordRequest records a completed request.
func (p *PrometheusCollector) RecordRequest(route string, status string, duration time.Duration) {
	p.requestsTotal.WithLabelValues(route, status).Inc()
	if p.config.EnableHistogram {
		p.requestDuration.WithLabelValues(route, status).Observe(duration.Seconds())
	}
}

// RecordActiveRequests updates the in-flight requests gauge.
func (p *PrometheusCollector) RecordActiveRequests(route string, delta int) {
	p.activeRequests.WithLabelValues(route).Add(float64(delta))
}

// RecordRateLimited counts a rejected request.
func (p *PrometheusCollector) RecordRateLimited(route string) {
	p.rateLimited.WithLabelValues(route).Inc()
}

// SetCacheStats publishes the URL cache gauges.
func (p *PrometheusCollector) SetCacheStats(size int, hitRate float64) {
	p.cacheSize.Set(float64(size))
	p.cacheHitRate.Set(hitRate)
}

// SetLimiterBuckets publishes the tracked bucket count.
func (p *PrometheusCollector) SetLimiterBuckets(n int) {
	p.limiterBuckets.Set(float64(n))
}

// GetRegistry returns the Prometheus registry.
func (p *PrometheusCollector) GetRegistry() *prometheus.Registry {
	return p.registry
}

// Handler returns an HTTP handler exposing the registry, for /metrics.
func (p *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
