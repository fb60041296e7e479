package app

import (
	"errors"
	"log/slog"
	"time"

	"github.com/rheddev/rhed-v2/internal/config"
	"github.com/rheddev/rhed-v2/internal/db"
	"github.com/rheddev/rhed-v2/internal/handlers"
	"github.com/rheddev/rhed-v2/internal/middleware"
	"github.com/rheddev/rhed-v2/internal/repositories"
	"github.com/rheddev/rhed-v2/internal/tokens"
	"github.com/rheddev/rhed-v2/internal/twitch"
	"github.com/rheddev/rhed-v2/internal/videos"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
// A nil pool keeps issued tokens in memory only.
func buildDependencies(pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	policy, err := videos.ParseFailurePolicy(cfg.FailurePolicy)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	var store tokens.Store
	if pool != nil {
		store = repositories.NewPostgresTokenStore(pool)
	} else {
		slog.Warn("no database configured, app access tokens are kept in memory")
		store = tokens.NewMemoryStore()
	}

	client := twitch.NewClient(cfg.Twitch.AuthURL, cfg.Twitch.APIURL, cfg.Twitch.Timeout)

	var provider videos.TokenProvider
	p, err := tokens.NewProvider(tokens.Credentials{
		ClientID:     cfg.Twitch.ClientID,
		ClientSecret: cfg.Twitch.ClientSecret,
	}, client, store)
	switch {
	case err == nil:
		provider = p
	case errors.Is(err, tokens.ErrAuthConfig):
		slog.Warn("twitch credentials incomplete, videos will report a configuration error", "policy", string(policy))
	default:
		return handlers.Dependencies{}, err
	}

	fetcher := videos.NewFetcher(provider, client, cfg.Twitch.ClientID, policy)

	deps := handlers.Dependencies{
		Videos:     videos.NewCachingFetcher(fetcher, cfg.VideosCacheTTL),
		ChannelID:  cfg.Twitch.ChannelID,
		VideoCount: cfg.Twitch.VideoCount,
		Limiter: middleware.NewRateLimiter(middleware.RateLimitConfig{
			PerMinute: cfg.RateLimitRPM,
			Burst:     10,
			IdleTTL:   10 * time.Minute,
		}),
		TrustedProxyHops: cfg.TrustedProxyHops,
	}
	if pinger, ok := pool.(db.Pinger); ok {
		deps.DB = pinger
	}
	return deps, nil
}
