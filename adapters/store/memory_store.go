package store

import (
	"context"
	"sync"
	"time"

	"github.com/intent-app/auth-service/ports"
)

// MemoryStore is an in-memory implementation of the Store interface.
// Suitable for tests and single-instance deployments.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]entry
}

type entry struct {
	value     string
	expiresAt time.Time
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() ports.Store {
	return &MemoryStore{data: make(map[string]entry)}
}

// Set stores a key with a value and expiration time.
func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Get retrieves a value by key. Expired entries read as absent.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok {
		return "", false, nil
	}
	if time.Now().After(e.expiresAt) {
		delete(s.data, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// SetIfAbsent stores the key only when it does not already hold a live entry.
func (s *MemoryStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if e, ok := s.data[key]; ok && now.Before(e.expiresAt) {
		return false, nil
	}
	s.data[key] = entry{value: value, expiresAt: now.Add(ttl)}
	return true, nil
}
