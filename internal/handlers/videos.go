package handlers

import (
	"net/http"

	"github.com/rheddev/rhed-v2/internal/logging"
	"github.com/rheddev/rhed-v2/internal/videos"
)

const configurationErrorMessage = "Please check your environment configuration."

// VideoHandler serves the recent streams shown on the landing page.
type VideoHandler struct {
	Videos    VideoSource
	ChannelID string
	Count     int
	Limiter   RateLimiter

	// TrustedProxyHops is how many reverse proxies in front of the service
	// append to X-Forwarded-For. Zero keys rate limits on the peer address.
	TrustedProxyHops int
}

type listVideosResponse struct {
	Videos []videos.Card `json:"videos"`
}

// List handles GET /api/v1/videos.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if limited(h.Limiter, h.TrustedProxyHops, w, r, "videos") {
		return
	}

	if h.Videos == nil {
		logger.Error("video source unavailable")
		respondConfigurationError(w, r)
		return
	}

	list, err := h.Videos.FetchRecentVideos(ctx, h.ChannelID, h.Count)
	if err != nil {
		logger.Error("fetch recent videos failed", "channelId", h.ChannelID, "error", err)
		respondConfigurationError(w, r)
		return
	}
	if list == nil {
		logger.Warn("video source reported missing configuration")
		respondConfigurationError(w, r)
		return
	}

	cards := make([]videos.Card, 0, len(list))
	for _, video := range list {
		cards = append(cards, videos.NewCard(video))
	}

	respondJSON(ctx, w, http.StatusOK, listVideosResponse{Videos: cards})
}

func respondConfigurationError(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusServiceUnavailable, "configuration_error", configurationErrorMessage)
}
