// Package ratelimit provides fixed-window RateLimitStore implementations
// guarding the verification endpoint against brute force and spam.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/intent-app/auth-service/core"
	"github.com/intent-app/auth-service/ports"
)

// MemoryStore is an in-process fixed-window counter. State is lost on
// restart, which is acceptable for a soft control.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window

	limit  int
	period time.Duration
}

type window struct {
	count   int
	resetAt time.Time
}

// NewMemoryStore creates a limiter allowing limit requests per period for
// each source key.
func NewMemoryStore(limit int, period time.Duration) ports.RateLimitStore {
	return &MemoryStore{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
	}
}

// Hit records one request for key and decides whether it may proceed.
func (s *MemoryStore) Hit(ctx context.Context, key string) (core.RateLimitDecision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	w, ok := s.windows[key]
	if !ok || now.After(w.resetAt) {
		s.windows[key] = &window{count: 1, resetAt: now.Add(s.period)}
		return core.RateLimitDecision{Allowed: true, Remaining: s.limit - 1}, nil
	}

	if w.count >= s.limit {
		return core.RateLimitDecision{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: w.resetAt.Sub(now),
		}, nil
	}

	w.count++
	return core.RateLimitDecision{Allowed: true, Remaining: s.limit - w.count}, nil
}
