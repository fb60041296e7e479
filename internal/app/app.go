package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/rheddev/rhed-v2/internal/config"
	"github.com/rheddev/rhed-v2/internal/db"
	"github.com/rheddev/rhed-v2/internal/handlers"
	"github.com/rheddev/rhed-v2/internal/httpserver"
	"github.com/rheddev/rhed-v2/internal/middleware"
)

// Run bootstraps the rhed backend application.
func Run(ctx context.Context, args []string) error {
	root := newRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "rhed",
		Short:         "Backend for the rhed streaming landing page",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:       "migrate [up|down|version]",
			Short:     "Apply or inspect database migrations",
			Args:      cobra.MaximumNArgs(1),
			ValidArgs: []string{"up", "down", "version"},
			RunE: func(cmd *cobra.Command, args []string) error {
				command := "up"
				if len(args) > 0 {
					command = args[0]
				}
				return runMigrations(command)
			},
		},
		&cobra.Command{
			Use:   "videos",
			Short: "Fetch the channel's recent videos once and print them as JSON",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return printVideos(cmd.Context(), cmd)
			},
		},
	)

	return root
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true, Level: lvl}))
}

// connect opens the token database when one is configured. The returned pool is nil otherwise.
func connect(ctx context.Context, cfg config.Config) (db.Pool, func(), error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, func() {}, nil
	}
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return pool, pool.Close, nil
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	pool, closePool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePool()

	deps, err := buildDependencies(pool, cfg)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	})

	handler := middleware.RequestLogger(logger)(middleware.Metrics(corsHandler.Handler(mux)))

	srv := httpserver.New(cfg.AppPort, handler, cfg.Twitch.Timeout, logger)

	logger.Info("starting http server", "addr", srv.Addr(), "channelId", cfg.Twitch.ChannelID)

	return srv.Run(ctx)
}

func runMigrations(command string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return errors.New("RHED_DATABASE_URL must be set to run migrations")
	}

	migrationDir := cfg.MigrationDir
	if !filepath.IsAbs(migrationDir) {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
		migrationDir = filepath.Join(wd, migrationDir)
	}

	m, err := migrate.New("file://"+migrationDir, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}
	defer m.Close()

	switch command {
	case "up", "":
		if err := m.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				fmt.Println("no migrations to apply")
				return nil
			}
			return fmt.Errorf("apply migrations: %w", err)
		}
		fmt.Println("migrations applied")
		return nil
	case "down":
		if err := m.Steps(-1); err != nil {
			return fmt.Errorf("revert migration: %w", err)
		}
		fmt.Println("reverted last migration")
		return nil
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("no migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read migration version: %w", err)
		}
		fmt.Printf("version %d (dirty=%t)\n", version, dirty)
		return nil
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
}

func printVideos(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(newLogger(cfg.LogLevel))

	pool, closePool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePool()

	deps, err := buildDependencies(pool, cfg)
	if err != nil {
		return err
	}

	list, err := deps.Videos.FetchRecentVideos(ctx, deps.ChannelID, deps.VideoCount)
	if err != nil {
		return err
	}
	if list == nil {
		return errors.New("videos unavailable: check the Twitch configuration")
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}
