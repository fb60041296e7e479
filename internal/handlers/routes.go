package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rheddev/rhed-v2/internal/db"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{DB: deps.DB}
	videos := VideoHandler{
		Videos:    deps.Videos,
		ChannelID: deps.ChannelID,
		Count:     deps.VideoCount,
		Limiter:   deps.Limiter,

		TrustedProxyHops: deps.TrustedProxyHops,
	}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/v1/videos", videos.List)
	mux.Handle("/metrics", promhttp.Handler())
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Videos     VideoSource
	ChannelID  string
	VideoCount int
	Limiter    RateLimiter

	// TrustedProxyHops is passed through to the rate limit key.
	TrustedProxyHops int

	// DB is pinged by the health check. Nil when tokens are kept in memory.
	DB db.Pinger
}
