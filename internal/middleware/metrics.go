package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/NehaKotwal/tinyurl/internal/metrics"
)

// Metrics records request counts, durations and in-flight gauges on the
// given collector. Routes are labelled by the matched chi pattern so that
// short-code redirects collapse into a single series.
func Metrics(collector metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := wrapWriter(w)

			route := r.URL.Path
			collector.RecordActiveRequests(route, 1)

			next.ServeHTTP(sw, r)

			// The route pattern is only known once chi has matched.
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			collector.RecordActiveRequests(r.URL.Path, -1)
			collector.RecordRequest(route, strconv.Itoa(sw.status), time.Since(start))
		})
	}
}
