package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TWITCH_CLIENT_ID", "")
	t.Setenv("TWITCH_CLIENT_SECRET", "")
	t.Setenv("RHED_CORS_ORIGINS", "")
	t.Setenv("RHED_TRUSTED_PROXY_HOPS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppPort != 8080 {
		t.Fatalf("expected default port got %d", cfg.AppPort)
	}
	if cfg.Twitch.ChannelID != "1216055197" || cfg.Twitch.VideoCount != 3 {
		t.Fatalf("unexpected twitch defaults: %+v", cfg.Twitch)
	}
	if cfg.VideosCacheTTL != 0 {
		t.Fatalf("expected zero cache ttl got %v", cfg.VideosCacheTTL)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSOrigins)
	}
	if cfg.TrustedProxyHops != 0 {
		t.Fatalf("expected forwarded headers to be untrusted by default got %d", cfg.TrustedProxyHops)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RHED_PORT", "9090")
	t.Setenv("TWITCH_CLIENT_ID", "client")
	t.Setenv("TWITCH_CLIENT_SECRET", "secret")
	t.Setenv("RHED_VIDEOS_CACHE_TTL", "30s")
	t.Setenv("RHED_CORS_ORIGINS", "https://rhed.rhamzthev.com, http://localhost:3000,")
	t.Setenv("RHED_TWITCH_VIDEO_COUNT", "not-a-number")
	t.Setenv("RHED_TRUSTED_PROXY_HOPS", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppPort != 9090 {
		t.Fatalf("expected port override got %d", cfg.AppPort)
	}
	if cfg.Twitch.ClientID != "client" || cfg.Twitch.ClientSecret != "secret" {
		t.Fatalf("unexpected credentials: %+v", cfg.Twitch)
	}
	if cfg.VideosCacheTTL != 30*time.Second {
		t.Fatalf("unexpected cache ttl %v", cfg.VideosCacheTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://localhost:3000" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSOrigins)
	}
	if cfg.Twitch.VideoCount != 3 {
		t.Fatalf("expected invalid count to fall back got %d", cfg.Twitch.VideoCount)
	}
	if cfg.TrustedProxyHops != 1 {
		t.Fatalf("expected trusted proxy hops override got %d", cfg.TrustedProxyHops)
	}
}
