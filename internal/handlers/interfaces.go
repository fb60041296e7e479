package handlers

import (
	"context"

	"github.com/rheddev/rhed-v2/internal/models"
)

// VideoSource returns the recent videos of a channel.
type VideoSource interface {
	FetchRecentVideos(ctx context.Context, channelID string, count int) ([]models.Video, error)
}
