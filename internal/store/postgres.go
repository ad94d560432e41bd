package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/authbridge/authbridge/internal/claim"
)

// PostgresStore persists claims in an auth_tokens table with an absolute
// expiry column. Expired rows are invisible to Fetch and cleared lazily.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Store backed by the given database.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Put(ctx context.Context, token string, c *claim.Claim, ttl time.Duration) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize claim: %w", err)
	}

	query := `
		INSERT INTO auth_tokens (token, claim, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE SET claim = EXCLUDED.claim, expires_at = EXCLUDED.expires_at`

	if _, err := s.db.ExecContext(ctx, query, token, payload, time.Now().Add(ttl)); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

func (s *PostgresStore) Fetch(ctx context.Context, token string) (*claim.Claim, error) {
	query := `
		SELECT claim FROM auth_tokens
		WHERE token = $1 AND expires_at > now()`

	var payload []byte
	err := s.db.QueryRowContext(ctx, query, token).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch token: %w", err)
	}

	var c claim.Claim
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, fmt.Errorf("failed to deserialize claim: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) Release(ctx context.Context, token string, _ bool) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to release token: %w", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
