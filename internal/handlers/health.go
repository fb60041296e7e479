package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rheddev/rhed-v2/internal/db"
	"github.com/rheddev/rhed-v2/internal/logging"
)

const healthCheckTimeout = 2 * time.Second

// HealthHandler reports whether the service and its token database are up.
type HealthHandler struct {
	DB db.Pinger
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Handle implements GET /healthz.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	if h.DB == nil {
		respondJSON(ctx, w, http.StatusOK, healthResponse{Status: "ok", Database: "disabled"})
		return
	}

	pingCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	if err := h.DB.Ping(pingCtx); err != nil {
		logging.FromContext(ctx).Warn("database ping failed", "error", err)
		respondJSON(ctx, w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Database: "unreachable"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, healthResponse{Status: "ok", Database: "ok"})
}
