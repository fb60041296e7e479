package videos

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rheddev/rhed-v2/internal/logging"
	"github.com/rheddev/rhed-v2/internal/models"
	"github.com/rheddev/rhed-v2/internal/tokens"
)

const (
	// DefaultCount is the page size used when the caller does not ask for one.
	DefaultCount = 3
	// MaxCount is the largest page the videos endpoint accepts.
	MaxCount = 100
)

// FailurePolicy selects how the fetcher reacts to missing credentials.
type FailurePolicy string

const (
	// PolicyLenient logs missing credentials and returns a nil result.
	PolicyLenient FailurePolicy = "lenient"
	// PolicyStrict returns tokens.ErrAuthConfig for missing credentials.
	PolicyStrict FailurePolicy = "strict"
)

// ParseFailurePolicy maps a configuration value to a policy, defaulting to lenient.
func ParseFailurePolicy(value string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(PolicyLenient):
		return PolicyLenient, nil
	case string(PolicyStrict):
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q", value)
	}
}

// TokenProvider returns a currently valid app access token.
type TokenProvider interface {
	GetValidToken(ctx context.Context) (models.AccessToken, error)
}

// VideoLister calls the upstream videos endpoint.
type VideoLister interface {
	GetVideos(ctx context.Context, token models.AccessToken, clientID, userID string, first int) ([]models.Video, models.Pagination, error)
}

// Fetcher resolves a valid token and lists the recent videos of a channel.
type Fetcher struct {
	tokens   TokenProvider
	api      VideoLister
	clientID string
	policy   FailurePolicy
}

// NewFetcher constructs a Fetcher. tokens may be nil when the credentials are
// incomplete; the policy then decides what callers observe.
func NewFetcher(tokens TokenProvider, api VideoLister, clientID string, policy FailurePolicy) *Fetcher {
	if policy == "" {
		policy = PolicyLenient
	}
	return &Fetcher{
		tokens:   tokens,
		api:      api,
		clientID: strings.TrimSpace(clientID),
		policy:   policy,
	}
}

// FetchRecentVideos returns up to count videos in the order the upstream listed them.
func (f *Fetcher) FetchRecentVideos(ctx context.Context, channelID string, count int) ([]models.Video, error) {
	if f == nil || f.api == nil {
		return nil, ErrFetcherUnavailable
	}
	if strings.TrimSpace(channelID) == "" {
		return nil, ErrInvalidChannel
	}
	count = normalizeCount(count)

	ctx, span := logging.StartSpan(ctx, "videos.FetchRecentVideos", slog.String("channel_id", channelID))
	defer span.End()
	logger := logging.FromContext(ctx)

	if f.clientID == "" || f.tokens == nil {
		if f.policy == PolicyStrict {
			return nil, tokens.ErrAuthConfig
		}
		logger.Error("missing Twitch client credentials")
		return nil, nil
	}

	token, err := f.tokens.GetValidToken(ctx)
	if err != nil {
		span.Fail(err)
		return nil, err
	}

	list, _, err := f.api.GetVideos(ctx, token, f.clientID, channelID, count)
	if err != nil {
		span.Fail(err)
		return nil, err
	}
	if len(list) > count {
		list = list[:count]
	}
	if list == nil {
		list = []models.Video{}
	}

	logger.Debug("fetched recent videos", slog.Int("count", len(list)))
	return list, nil
}

func normalizeCount(count int) int {
	if count <= 0 {
		return DefaultCount
	}
	if count > MaxCount {
		return MaxCount
	}
	return count
}
