// Package store persists claims keyed by their opaque token string with a
// TTL derived from the provider-issued expiry. The store never inspects
// claim contents; validation happens before a claim is ever stored.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/authbridge/authbridge/internal/claim"
)

// ErrNotFound is returned by Fetch when no live record exists for a token.
var ErrNotFound = errors.New("token not found")

// Store is a key to serialized-claim map with expiry. Writes are
// last-writer-wins per key; creation silently overwrites.
type Store interface {
	// Put stores the claim under token for ttl.
	Put(ctx context.Context, token string, c *claim.Claim, ttl time.Duration) error
	// Fetch returns the claim stored under token, or ErrNotFound if the
	// record is absent or expired.
	Fetch(ctx context.Context, token string) (*claim.Claim, error)
	// Release removes the record for token. The forever flag is a reserved
	// extension point for a future deny-list policy; implementations accept
	// and ignore it.
	Release(ctx context.Context, token string, forever bool) error
}
