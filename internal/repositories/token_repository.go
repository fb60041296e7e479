package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rheddev/rhed-v2/internal/db"
	"github.com/rheddev/rhed-v2/internal/models"
	"github.com/rheddev/rhed-v2/internal/tokens"
)

// PostgresTokenStore persists app access tokens to the append-only app_access_tokens table.
type PostgresTokenStore struct {
	pool db.Pool
}

// NewPostgresTokenStore constructs a token store backed by PostgreSQL.
func NewPostgresTokenStore(pool db.Pool) *PostgresTokenStore {
	return &PostgresTokenStore{pool: pool}
}

// Append inserts a new token record.
func (s *PostgresTokenStore) Append(ctx context.Context, token models.AccessToken) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return &tokens.PersistenceError{Op: "append", Err: fmt.Errorf("acquire connection: %w", err)}
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO app_access_tokens (access_token, expiration_date, token_type)
        VALUES ($1, $2, $3)
    `, token.Token, token.ExpiresAt.UTC(), token.TokenType)
	if err != nil {
		return &tokens.PersistenceError{Op: "append", Err: fmt.Errorf("insert app access token: %w", err)}
	}

	return nil
}

// Latest returns the record with the furthest expiration date.
func (s *PostgresTokenStore) Latest(ctx context.Context) (models.AccessToken, bool, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return models.AccessToken{}, false, &tokens.PersistenceError{Op: "latest", Err: fmt.Errorf("acquire connection: %w", err)}
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT access_token, expiration_date, token_type
        FROM app_access_tokens
        ORDER BY expiration_date DESC
        LIMIT 1
    `)

	var (
		token     models.AccessToken
		expiresAt time.Time
	)
	if err := row.Scan(&token.Token, &expiresAt, &token.TokenType); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.AccessToken{}, false, nil
		}
		return models.AccessToken{}, false, &tokens.PersistenceError{Op: "latest", Err: fmt.Errorf("select latest app access token: %w", err)}
	}

	token.ExpiresAt = expiresAt.UTC()
	return token, true, nil
}

var _ tokens.Store = (*PostgresTokenStore)(nil)
