package tokens

import (
	"context"
	"sync"

	"github.com/rheddev/rhed-v2/internal/models"
)

// Store is an append-only record of issued access tokens.
type Store interface {
	// Append inserts a newly issued token.
	Append(ctx context.Context, token models.AccessToken) error
	// Latest returns the token with the furthest expiry, or false when none was stored.
	Latest(ctx context.Context) (models.AccessToken, bool, error)
}

// NewMemoryStore returns a Store backed by an in-process slice.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// MemoryStore implements Store for tests and database-less runs.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens []models.AccessToken
}

// Append records the token.
func (s *MemoryStore) Append(ctx context.Context, token models.AccessToken) error {
	if err := ctx.Err(); err != nil {
		return &PersistenceError{Op: "append", Err: err}
	}
	s.mu.Lock()
	s.tokens = append(s.tokens, token)
	s.mu.Unlock()
	return nil
}

// Latest returns the stored token that expires last.
func (s *MemoryStore) Latest(ctx context.Context) (models.AccessToken, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.AccessToken{}, false, &PersistenceError{Op: "latest", Err: err}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.tokens) == 0 {
		return models.AccessToken{}, false, nil
	}
	latest := s.tokens[0]
	for _, token := range s.tokens[1:] {
		if token.ExpiresAt.After(latest.ExpiresAt) {
			latest = token
		}
	}
	return latest, true, nil
}

// Len reports how many tokens were appended. Useful for tests.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}
