package identity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/intent-app/auth-service/core"
	"github.com/intent-app/auth-service/ports"
)

// RedisStore is a Redis implementation of the IdentityStore interface.
// Identities are small and long-lived, so they are stored as JSON values
// without expiry.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis identity store.
func NewRedisStore(client *redis.Client) ports.IdentityStore {
	return &RedisStore{
		client: client,
		prefix: "auth:identity:",
	}
}

// FindByKey returns the identity for a login key.
func (s *RedisStore) FindByKey(ctx context.Context, key string) (*core.Identity, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return nil, core.ErrIdentityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("identity get: %w", err)
	}

	var id core.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return nil, fmt.Errorf("identity decode: %w", err)
	}
	return &id, nil
}

// Create stores a new identity. SetNX keeps a concurrent first sign-in from
// silently overwriting an identity created moments earlier.
func (s *RedisStore) Create(ctx context.Context, identity *core.Identity) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("identity encode: %w", err)
	}
	if err := s.client.SetNX(ctx, s.prefix+identity.Key, raw, 0).Err(); err != nil {
		return fmt.Errorf("identity create: %w", err)
	}
	return nil
}

// UpdateCredential replaces the identity's secret.
func (s *RedisStore) UpdateCredential(ctx context.Context, key, credential string) error {
	id, err := s.FindByKey(ctx, key)
	if err != nil {
		return err
	}

	id.Credential = credential
	raw, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("identity encode: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+key, raw, 0).Err(); err != nil {
		return fmt.Errorf("identity update: %w", err)
	}
	return nil
}
