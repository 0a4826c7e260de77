package memorystore

import (
	"context"
	"sync"
	"time"

	"github.com/open-rails/transcribekit/entitlement"
)

// Store is an in-memory implementation of entitlement.Store.
// Suitable for single-process deployments and tests.
type Store struct {
	mu   sync.RWMutex
	data map[string]entitlement.Record
}

// New creates an empty in-memory entitlement store.
func New() *Store {
	return &Store{data: make(map[string]entitlement.Record)}
}

func (s *Store) Get(ctx context.Context, identity string) (entitlement.Record, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[entitlement.NormalizeIdentity(identity)]
	return rec, ok, nil
}

func (s *Store) Upsert(ctx context.Context, identity string, active bool, verifiedAt time.Time) error {
	_ = ctx
	key := entitlement.NormalizeIdentity(identity)
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.data[key]; ok && existing.LastVerifiedAt.After(verifiedAt) {
		// A newer verification already landed.
		return nil
	}
	s.data[key] = entitlement.Record{Identity: key, Active: active, LastVerifiedAt: verifiedAt}
	return nil
}

// Close releases the backing map.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]entitlement.Record)
	return nil
}
