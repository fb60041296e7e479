package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rheddev/rhed-v2/internal/models"
	"github.com/rheddev/rhed-v2/internal/tokens"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresTokenStore_LatestEmpty(t *testing.T) {
	resetDatabase(t)
	store := NewPostgresTokenStore(testPool)

	_, ok, err := store.Latest(context.Background())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if ok {
		t.Fatal("expected no token in an empty table")
	}
}

func TestPostgresTokenStore_LatestByExpiry(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)
	store := NewPostgresTokenStore(testPool)

	now := time.Now().UTC().Truncate(time.Millisecond)
	records := []models.AccessToken{
		{Token: uuid.NewString(), ExpiresAt: now.Add(time.Hour), TokenType: "bearer"},
		{Token: uuid.NewString(), ExpiresAt: now.Add(3 * time.Hour), TokenType: "bearer"},
		{Token: uuid.NewString(), ExpiresAt: now.Add(-time.Hour), TokenType: "bearer"},
	}
	for _, record := range records {
		if err := store.Append(ctx, record); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	latest, ok, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !ok {
		t.Fatal("expected a token")
	}
	if latest.Token != records[1].Token {
		t.Fatalf("expected furthest expiring token %s got %s", records[1].Token, latest.Token)
	}
	if !timesClose(latest.ExpiresAt, records[1].ExpiresAt, time.Millisecond) {
		t.Fatalf("unexpected expiry: got %v want %v", latest.ExpiresAt, records[1].ExpiresAt)
	}
	if latest.TokenType != "bearer" {
		t.Fatalf("unexpected token type %q", latest.TokenType)
	}
}

func TestPostgresTokenStore_WithProvider(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)
	store := NewPostgresTokenStore(testPool)

	issuer := tokens.IssuerFunc(func(context.Context, string, string) (models.TokenGrant, error) {
		return models.TokenGrant{AccessToken: "abc", ExpiresIn: 3600, TokenType: "bearer"}, nil
	})
	provider, err := tokens.NewProvider(tokens.Credentials{ClientID: "id", ClientSecret: "secret"}, issuer, store)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	first, err := provider.GetValidToken(ctx)
	if err != nil {
		t.Fatalf("get valid token: %v", err)
	}
	second, err := provider.GetValidToken(ctx)
	if err != nil {
		t.Fatalf("get valid token: %v", err)
	}
	if first.Token != "abc" || second.Token != "abc" {
		t.Fatalf("unexpected tokens %q %q", first.Token, second.Token)
	}

	if got := countTokens(t); got != 1 {
		t.Fatalf("expected 1 stored token got %d", got)
	}
}

func TestPostgresTokenStore_ClosedPool(t *testing.T) {
	pool, err := pgxpool.New(context.Background(), testPool.Config().ConnString())
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	pool.Close()

	store := NewPostgresTokenStore(pool)
	var pErr *tokens.PersistenceError
	if err := store.Append(context.Background(), models.AccessToken{Token: "x", ExpiresAt: time.Now(), TokenType: "bearer"}); !errors.As(err, &pErr) {
		t.Fatalf("expected PersistenceError got %v", err)
	}
	if _, _, err := store.Latest(context.Background()); !errors.As(err, &pErr) {
		t.Fatalf("expected PersistenceError got %v", err)
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "TRUNCATE TABLE app_access_tokens"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func countTokens(t *testing.T) int {
	t.Helper()
	var count int
	if err := testPool.QueryRow(context.Background(), "SELECT count(*) FROM app_access_tokens").Scan(&count); err != nil {
		t.Fatalf("count tokens: %v", err)
	}
	return count
}

func timesClose(a, b time.Time, delta time.Duration) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= delta
}
