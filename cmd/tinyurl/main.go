package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/NehaKotwal/tinyurl/internal/api"
	"github.com/NehaKotwal/tinyurl/internal/cache"
	"github.com/NehaKotwal/tinyurl/internal/config"
	"github.com/NehaKotwal/tinyurl/internal/metrics"
	"github.com/NehaKotwal/tinyurl/internal/ratelimit"
	"github.com/NehaKotwal/tinyurl/internal/repository"
	"github.com/NehaKotwal/tinyurl/internal/service"
	"github.com/NehaKotwal/tinyurl/internal/tracing"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(settings.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(settings, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(settings config.Settings, logger *zap.Logger) error {
	repo, err := repository.Open(settings.DatabasePath)
	if err != nil {
		return err
	}

	var manager *cache.Manager
	if settings.CacheEnabled {
		manager, err = cache.NewManager(
			settings.CacheMaxSize,
			settings.CacheTTL,
			settings.CachePopularThreshold,
		)
		if err != nil {
			return err
		}
	}

	var limiter *ratelimit.PerKeyLimiter
	if settings.RateLimitEnabled {
		limiter, err = ratelimit.NewPerKeyLimiter(
			settings.RateLimitRequests,
			settings.RateLimitWindow,
		)
		if err != nil {
			return err
		}
	}

	tp, err := tracing.Setup(tracing.Config{
		Enabled:           settings.TracingEnabled,
		ServiceName:       "tinyurl",
		ServiceVersion:    settings.AppVersion,
		CollectorEndpoint: settings.JaegerEndpoint,
	})
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx, tp); err != nil {
			logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	collector := metrics.NewPrometheusCollector()

	svc := service.New(repo, manager, service.Config{
		BaseURL:              settings.BaseURL,
		ShortCodeLength:      settings.ShortCodeLength,
		CustomAliasMinLength: settings.CustomAliasMinLength,
		CustomAliasMaxLength: settings.CustomAliasMaxLength,
		CacheTTL:             settings.CacheTTL,
	}, logger)

	routerCfg := api.RouterConfig{
		Handler:   api.NewHandler(svc, logger),
		Logger:    logger,
		Collector: collector,
		Limiter:   limiter,
		Tracing:   settings.TracingEnabled,
	}
	if settings.RateLimitEnabled {
		routerCfg.GlobalRPS = float64(settings.RateLimitGlobalRPS)
		routerCfg.GlobalBurst = settings.RateLimitGlobalBurst
	}
	router := api.NewRouter(routerCfg)

	server := &http.Server{
		Addr:         settings.Addr(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan struct{})
	go maintenance(settings.CleanupInterval, manager, limiter, collector, logger, stop)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", settings.Addr()),
			zap.String("base_url", settings.BaseURL),
			zap.Bool("cache", settings.CacheEnabled),
			zap.Bool("rate_limit", settings.RateLimitEnabled),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		close(stop)
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}
	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

// maintenance periodically evicts expired cache entries, releases idle
// rate limit buckets and refreshes the observability gauges.
func maintenance(interval time.Duration, manager *cache.Manager, limiter *ratelimit.PerKeyLimiter, collector metrics.Collector, logger *zap.Logger, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if manager != nil {
				removed := manager.CleanupExpired()
				stats := manager.Stats()
				collector.SetCacheStats(stats.Size, stats.HitRate)
				if removed > 0 {
					logger.Debug("cache cleanup", zap.Int("removed", removed))
				}
			}
			if limiter != nil {
				released := limiter.CleanupOldBuckets()
				collector.SetLimiterBuckets(limiter.Len())
				if released > 0 {
					logger.Debug("limiter cleanup", zap.Int("released", released))
				}
			}
		}
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
