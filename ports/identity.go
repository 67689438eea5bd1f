package ports

import (
	"context"

	"github.com/intent-app/auth-service/core"
)

// IdentityStore persists wallet-derived identities. Lookup is always by the
// deterministic login key so one address maps to exactly one identity.
type IdentityStore interface {
	// FindByKey returns the identity for a login key, or
	// core.ErrIdentityNotFound when absent.
	FindByKey(ctx context.Context, key string) (*core.Identity, error)

	// Create stores a new identity.
	Create(ctx context.Context, identity *core.Identity) error

	// UpdateCredential replaces the identity's secret.
	UpdateCredential(ctx context.Context, key, credential string) error
}
