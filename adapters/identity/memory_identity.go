// Package identity provides IdentityStore implementations backing the
// wallet-to-identity exchange.
package identity

import (
	"context"
	"sync"

	"github.com/intent-app/auth-service/core"
	"github.com/intent-app/auth-service/ports"
)

// MemoryStore is an in-memory IdentityStore for tests and local runs.
type MemoryStore struct {
	mu    sync.Mutex
	byKey map[string]*core.Identity
}

// NewMemoryStore creates a new in-memory identity store.
func NewMemoryStore() ports.IdentityStore {
	return &MemoryStore{byKey: make(map[string]*core.Identity)}
}

// FindByKey returns the identity for a login key.
func (s *MemoryStore) FindByKey(ctx context.Context, key string) (*core.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byKey[key]
	if !ok {
		return nil, core.ErrIdentityNotFound
	}
	clone := *id
	return &clone, nil
}

// Create stores a new identity.
func (s *MemoryStore) Create(ctx context.Context, identity *core.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *identity
	s.byKey[identity.Key] = &clone
	return nil
}

// UpdateCredential replaces the identity's secret.
func (s *MemoryStore) UpdateCredential(ctx context.Context, key, credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byKey[key]
	if !ok {
		return core.ErrIdentityNotFound
	}
	id.Credential = credential
	return nil
}
