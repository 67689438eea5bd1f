package ports

import (
	"context"
	"time"
)

// Store is a TTL key-value store shared by nonce consumption and refresh
// token revocation. Implementations are injected so tests can substitute
// deterministic fakes and multi-instance deployments can share Redis.
type Store interface {
	// Set stores a key with a value and expiration time.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get retrieves a value by key; the bool reports presence.
	Get(ctx context.Context, key string) (string, bool, error)

	// SetIfAbsent stores the key only when it does not already exist and
	// reports whether the write happened. Used for single-use nonce intake.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}
