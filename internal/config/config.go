package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures the runtime configuration for the rhed backend service.
type Config struct {
	AppPort        int
	DatabaseURL    string
	MigrationDir   string
	LogLevel       string
	FailurePolicy  string
	CORSOrigins    []string
	RateLimitRPM   int
	VideosCacheTTL time.Duration
	Twitch         TwitchConfig

	// TrustedProxyHops is the number of reverse proxies that append to
	// X-Forwarded-For. Zero ignores the header.
	TrustedProxyHops int
}

// TwitchConfig holds the credentials and endpoints used to talk to Twitch.
type TwitchConfig struct {
	ClientID     string
	ClientSecret string
	ChannelID    string
	VideoCount   int
	AuthURL      string
	APIURL       string
	Timeout      time.Duration
}

// Load reads configuration from environment variables, applying sensible defaults
// for local development while allowing overrides through environment variables.
func Load() (Config, error) {
	cfg := Config{
		AppPort:        getInt("RHED_PORT", 8080),
		DatabaseURL:    getString("RHED_DATABASE_URL", ""),
		MigrationDir:   getString("RHED_MIGRATIONS", "migrations"),
		LogLevel:       getString("RHED_LOG_LEVEL", "info"),
		FailurePolicy:  getString("RHED_FAILURE_POLICY", "lenient"),
		CORSOrigins:    getList("RHED_CORS_ORIGINS", []string{"*"}),
		RateLimitRPM:   getInt("RHED_RATE_LIMIT_RPM", 60),
		VideosCacheTTL: getDuration("RHED_VIDEOS_CACHE_TTL", 0),
		Twitch: TwitchConfig{
			ClientID:     os.Getenv("TWITCH_CLIENT_ID"),
			ClientSecret: os.Getenv("TWITCH_CLIENT_SECRET"),
			ChannelID:    getString("RHED_TWITCH_CHANNEL_ID", "1216055197"),
			VideoCount:   getInt("RHED_TWITCH_VIDEO_COUNT", 3),
			AuthURL:      getString("RHED_TWITCH_AUTH_URL", "https://id.twitch.tv/oauth2/token"),
			APIURL:       getString("RHED_TWITCH_API_URL", "https://api.twitch.tv/helix"),
			Timeout:      getDuration("RHED_TWITCH_TIMEOUT", 10*time.Second),
		},
		TrustedProxyHops: getInt("RHED_TRUSTED_PROXY_HOPS", 0),
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func getList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
