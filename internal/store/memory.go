package store

import (
	"context"
	"sync"
	"time"

	"github.com/authbridge/authbridge/internal/claim"
)

type memoryEntry struct {
	claim     *claim.Claim
	expiresAt time.Time
}

// MemoryStore is an in-process Store. Safe for concurrent use across
// requests; expired entries are dropped on read.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, token string, c *claim.Claim, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = memoryEntry{claim: c, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Fetch(_ context.Context, token string) (*claim.Claim, error) {
	s.mu.RLock()
	entry, ok := s.entries[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, token)
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	return entry.claim, nil
}

func (s *MemoryStore) Release(_ context.Context, token string, _ bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
	return nil
}

var _ Store = (*MemoryStore)(nil)
