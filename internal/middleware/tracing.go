package middleware

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	TracerName string
	Propagator propagation.TextMapPropagator
	ExtraAttrs []attribute.KeyValue
}

// TracingOption is a functional option for tracing configuration.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithPropagator sets a custom propagator.
func WithPropagator(propagator propagation.TextMapPropagator) TracingOption {
	return func(c *TracingConfig) {
		c.Propagator = propagator
	}
}

// WithExtraAttributes adds extra attributes to all spans.
func WithExtraAttributes(attrs ...attribute.KeyValue) TracingOption {
	return func(c *TracingConfig) {
		c.ExtraAttrs = append(c.ExtraAttrs, attrs...)
	}
}

// Tracing starts a server span per request, extracting any incoming
// trace context from the request headers.
func Tracing(opts ...TracingOption) func(http.Handler) http.Handler {
	config := &TracingConfig{
		TracerName: "tinyurl",
		Propagator: otel.GetTextMapPropagator(),
	}
	for _, opt := range opts {
		opt(config)
	}

	tracer := otel.Tracer(config.TracerName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := config.Propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			attrs := []attribute.KeyValue{
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.client_ip", ClientIP(r)),
			}
			attrs = append(attrs, config.ExtraAttrs...)

			ctx, span := tracer.Start(ctx,
				fmt.Sprintf("%s %s", r.Method, r.URL.Path),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			sw := wrapWriter(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			if rctx := chi.RouteContext(ctx); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					span.SetName(fmt.Sprintf("%s %s", r.Method, pattern))
					span.SetAttributes(attribute.String("http.route", pattern))
				}
			}
			span.SetAttributes(attribute.Int("http.status_code", sw.status))
			if sw.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(sw.status))
			}
		})
	}
}
