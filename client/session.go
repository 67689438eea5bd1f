package client

import (
	"sync"

	"github.com/intent-app/auth-service/core"
)

// SignedSession is the client-held proof of a completed sign-in: the
// challenge, the wallet's signature over its canonical text, and the backend
// session obtained in exchange.
type SignedSession struct {
	Challenge core.Challenge       `json:"message"`
	Signature string               `json:"signature"`
	Message   string               `json:"formattedMessage"`
	Backend   *core.BackendSession `json:"backend,omitempty"`
	User      *core.User           `json:"user,omitempty"`
}

// SessionStore abstracts the tab-scoped storage a signed session is cached
// in between page loads. Implementations are injected so tests can use
// deterministic fakes.
type SessionStore interface {
	Load() (*SignedSession, bool, error)
	Save(session *SignedSession) error
	Clear() error
}

// MemorySessionStore is an in-memory SessionStore.
type MemorySessionStore struct {
	mu      sync.Mutex
	session *SignedSession
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

// Load returns the stored session, if any.
func (s *MemorySessionStore) Load() (*SignedSession, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, false, nil
	}
	clone := *s.session
	return &clone, true, nil
}

// Save stores the session.
func (s *MemorySessionStore) Save(session *SignedSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *session
	s.session = &clone
	return nil
}

// Clear removes the stored session.
func (s *MemorySessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}
