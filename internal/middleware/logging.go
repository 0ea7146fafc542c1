package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// LoggingConfig holds configuration for the request logging middleware.
type LoggingConfig struct {
	Logger      *zap.Logger
	ExtraFields []zap.Field
	SkipPaths   map[string]bool
}

// LoggingOption is a functional option for logging configuration.
type LoggingOption func(*LoggingConfig)

// WithLoggingFields adds fixed fields to every log entry.
func WithLoggingFields(fields ...zap.Field) LoggingOption {
	return func(c *LoggingConfig) {
		c.ExtraFields = append(c.ExtraFields, fields...)
	}
}

// WithLoggingSkipPaths suppresses logging for the given paths.
func WithLoggingSkipPaths(paths ...string) LoggingOption {
	return func(c *LoggingConfig) {
		for _, p := range paths {
			c.SkipPaths[p] = true
		}
	}
}

// Logging logs one line per completed request with method, path, status,
// size and duration.
func Logging(logger *zap.Logger, opts ...LoggingOption) func(http.Handler) http.Handler {
	config := &LoggingConfig{
		Logger:    logger,
		SkipPaths: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(config)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.SkipPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := wrapWriter(w)

			next.ServeHTTP(sw, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.status),
				zap.Int("bytes", sw.bytes),
				zap.Duration("duration", time.Since(start)),
				zap.String("client", ClientIP(r)),
			}
			fields = append(fields, config.ExtraFields...)

			if sw.status >= http.StatusInternalServerError {
				config.Logger.Error("request completed", fields...)
			} else {
				config.Logger.Info("request completed", fields...)
			}
		})
	}
}
