package videos

import (
	"context"

	"github.com/rheddev/rhed-v2/internal/models"
)

// Source returns the most recent videos of a channel, newest first.
type Source interface {
	FetchRecentVideos(ctx context.Context, channelID string, count int) ([]models.Video, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, channelID string, count int) ([]models.Video, error)

// FetchRecentVideos implements Source.
func (f SourceFunc) FetchRecentVideos(ctx context.Context, channelID string, count int) ([]models.Video, error) {
	return f(ctx, channelID, count)
}
