package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestTotal counts HTTP requests by method, path and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rhed_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rhed_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	// TokenRefreshes counts app access token refresh attempts by outcome.
	TokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rhed_token_refreshes_total",
			Help: "Total number of app access token refresh attempts",
		},
		[]string{"outcome"},
	)
	// UpstreamRequests counts calls to the Twitch endpoints by endpoint and HTTP status.
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rhed_upstream_requests_total",
			Help: "Total number of requests sent to Twitch",
		},
		[]string{"endpoint", "status"},
	)
	// VideoCacheLookups counts video cache lookups by result (hit, miss, shared, abandoned).
	VideoCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rhed_video_cache_lookups_total",
			Help: "Total number of video cache lookups",
		},
		[]string{"result"},
	)
)
