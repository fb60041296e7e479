package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rheddev/rhed-v2/internal/metrics"
)

var knownPaths = map[string]struct{}{
	"/healthz":       {},
	"/metrics":       {},
	"/api/v1/videos": {},
}

// Metrics records request counts and latencies.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w}

		next.ServeHTTP(wrapped, r)

		path := r.URL.Path
		if _, ok := knownPaths[path]; !ok {
			path = "other"
		}
		metrics.RequestTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.Status())).Inc()
		metrics.RequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
