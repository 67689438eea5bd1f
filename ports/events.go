package ports

import "context"

// EventPublisher notifies other services about session lifecycle changes.
type EventPublisher interface {
	PublishSignIn(ctx context.Context, address, identityID string) error
	PublishSignOut(ctx context.Context, address, tokenID string) error
}
