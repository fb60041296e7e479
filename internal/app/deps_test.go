package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rheddev/rhed-v2/internal/config"
	"github.com/rheddev/rhed-v2/internal/tokens"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func (fakePool) Ping(context.Context) error { return errors.New("not implemented") }

func testConfig() config.Config {
	return config.Config{
		FailurePolicy: "lenient",
		RateLimitRPM:  60,
		Twitch: config.TwitchConfig{
			ClientID:     "client",
			ClientSecret: "secret",
			ChannelID:    "1216055197",
			VideoCount:   3,
			Timeout:      time.Second,
		},
	}
}

func TestBuildDependencies(t *testing.T) {
	deps, err := buildDependencies(fakePool{}, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if deps.Videos == nil {
		t.Fatal("expected video source to be configured")
	}
	if deps.Limiter == nil {
		t.Fatal("expected rate limiter to be configured")
	}
	if deps.DB == nil {
		t.Fatal("expected health check to ping the pool")
	}
	if deps.ChannelID != "1216055197" || deps.VideoCount != 3 {
		t.Fatalf("unexpected channel settings: %+v", deps)
	}
}

func TestBuildDependenciesPersistenceFailureSurfaces(t *testing.T) {
	deps, err := buildDependencies(fakePool{}, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var pErr *tokens.PersistenceError
	if _, err := deps.Videos.FetchRecentVideos(context.Background(), "1216055197", 3); !errors.As(err, &pErr) {
		t.Fatalf("expected PersistenceError from unreachable pool got %v", err)
	}
}

func TestBuildDependenciesMissingCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.Twitch.ClientSecret = ""

	deps, err := buildDependencies(nil, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deps.DB != nil {
		t.Fatal("expected no database without a pool")
	}
	list, err := deps.Videos.FetchRecentVideos(context.Background(), "1216055197", 3)
	if err != nil || list != nil {
		t.Fatalf("expected lenient nil result got %v, %v", list, err)
	}

	cfg.FailurePolicy = "strict"
	deps, err = buildDependencies(nil, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := deps.Videos.FetchRecentVideos(context.Background(), "1216055197", 3); !errors.Is(err, tokens.ErrAuthConfig) {
		t.Fatalf("expected ErrAuthConfig got %v", err)
	}
}

func TestBuildDependenciesInvalidPolicy(t *testing.T) {
	cfg := testConfig()
	cfg.FailurePolicy = "sometimes"

	if _, err := buildDependencies(nil, cfg); err == nil {
		t.Fatal("expected error for unknown failure policy")
	}
}
