package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rheddev/rhed-v2/internal/logging"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
	}
}

// respondError writes a body that never includes internal error text.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondJSON(r.Context(), w, status, errorResponse{Error: code, Message: message})
}
