package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/intent-app/auth-service/ports"
)

const (
	// SignInTopic carries successful wallet authentications.
	SignInTopic = "auth.signin"
	// SignOutTopic carries explicit sign-outs for cross-instance notification.
	SignOutTopic = "auth.signout"
)

// SignInEvent is published after a session exchange succeeds.
type SignInEvent struct {
	Address    string `json:"address"`
	IdentityID string `json:"identity_id"`
}

// SignOutEvent is published after a refresh token is revoked.
type SignOutEvent struct {
	Address string `json:"address"`
	TokenID string `json:"token_id"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishSignIn publishes a sign-in event.
func (p *WatermillPublisher) PublishSignIn(ctx context.Context, address, identityID string) error {
	return p.publish(SignInTopic, SignInEvent{Address: address, IdentityID: identityID})
}

// PublishSignOut publishes a sign-out event.
func (p *WatermillPublisher) PublishSignOut(ctx context.Context, address, tokenID string) error {
	return p.publish(SignOutTopic, SignOutEvent{Address: address, TokenID: tokenID})
}

func (p *WatermillPublisher) publish(topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
