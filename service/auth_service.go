package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/intent-app/auth-service/core"
	"github.com/intent-app/auth-service/internal/eth"
	"github.com/intent-app/auth-service/ports"
	"github.com/intent-app/auth-service/siwe"
)

const (
	nonceKeyPrefix   = "nonce:"
	revokedKeyPrefix = "revoked:"

	// defaultNonceTTL bounds replay tracking for challenges issued without
	// an expiration time.
	defaultNonceTTL = 10 * time.Minute
)

// Config carries the verification-side settings of the service.
type Config struct {
	// Domain is the expected serving host; challenges bound to any other
	// domain are rejected.
	Domain string

	// IdentityDomain namespaces the synthetic login keys derived from
	// wallet addresses, e.g. "wallet.intent.app".
	IdentityDomain string
}

// AuthService verifies sign-in proofs and exchanges verified addresses for
// backend sessions.
type AuthService struct {
	identities ports.IdentityStore
	tokenizer  ports.Tokenizer
	store      ports.Store
	eventPub   ports.EventPublisher

	domain         string
	identityDomain string
}

// NewAuthService creates a new authentication service. eventPub may be nil
// when no broker is configured.
func NewAuthService(
	identities ports.IdentityStore,
	tokenizer ports.Tokenizer,
	store ports.Store,
	eventPub ports.EventPublisher,
	cfg Config,
) *AuthService {
	return &AuthService{
		identities:     identities,
		tokenizer:      tokenizer,
		store:          store,
		eventPub:       eventPub,
		domain:         cfg.Domain,
		identityDomain: cfg.IdentityDomain,
	}
}

// VerifyProof checks that the proof's signature was produced over exactly
// the presented message by the key controlling the claimed address, and that
// the embedded challenge is still valid for this host. On success the
// challenge nonce is consumed, so a replayed proof fails.
func (s *AuthService) VerifyProof(ctx context.Context, proof core.AuthProof) (*core.Challenge, error) {
	if !siwe.IsValidAddress(proof.Address) {
		return nil, core.ErrInvalidAddress
	}

	challenge, err := siwe.Parse(proof.Message)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrMalformedMessage, err)
	}

	if !strings.EqualFold(challenge.Address, proof.Address) {
		return nil, core.ErrAddressMismatch
	}

	if challenge.Expired(time.Now()) {
		return nil, core.ErrChallengeExpired
	}

	if challenge.Domain != s.domain {
		return nil, core.ErrDomainMismatch
	}

	// Any recovery fault reads as a bad signature; raw crypto errors must
	// not cross the boundary.
	valid, err := eth.Verify(proof.Message, proof.Signature, proof.Address)
	if err != nil || !valid {
		return nil, core.ErrBadSignature
	}

	if err := s.consumeNonce(ctx, challenge); err != nil {
		return nil, err
	}

	return challenge, nil
}

// consumeNonce records the challenge nonce as used for the remainder of the
// challenge lifetime. A nonce seen before means the proof is a replay.
func (s *AuthService) consumeNonce(ctx context.Context, challenge *core.Challenge) error {
	ttl := defaultNonceTTL
	if challenge.ExpirationTime != nil {
		if remaining := time.Until(*challenge.ExpirationTime); remaining > 0 {
			ttl = remaining
		}
	}

	ok, err := s.store.SetIfAbsent(ctx, nonceKeyPrefix+challenge.Nonce, strings.ToLower(challenge.Address), ttl)
	if err != nil {
		return fmt.Errorf("%w: nonce store failed", core.ErrAuthService)
	}
	if !ok {
		return core.ErrNonceConsumed
	}
	return nil
}

// Exchange turns a verified wallet address into a backend session. Must only
// be called after VerifyProof succeeds. One address maps to exactly one
// identity; repeated calls rotate the credential and issue a fresh session.
func (s *AuthService) Exchange(ctx context.Context, address string) (*core.BackendSession, *core.User, error) {
	normalized := strings.ToLower(address)
	key := normalized + "@" + s.identityDomain

	identity, err := s.identities.FindByKey(ctx, key)
	switch {
	case err == nil:
		// Existing identity: rotate to a fresh secret so no long-lived
		// credential survives a sign-in.
		credential, err := generateCredential()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: credential generation failed", core.ErrAuthService)
		}
		if err := s.identities.UpdateCredential(ctx, key, credential); err != nil {
			return nil, nil, fmt.Errorf("%w: credential rotation failed", core.ErrAuthService)
		}
		identity.Credential = credential

	case errors.Is(err, core.ErrIdentityNotFound):
		credential, err := generateCredential()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: credential generation failed", core.ErrAuthService)
		}
		identity = &core.Identity{
			ID:         uuid.New().String(),
			Key:        key,
			Address:    normalized,
			Credential: credential,
			CreatedAt:  time.Now(),
		}
		if err := s.identities.Create(ctx, identity); err != nil {
			return nil, nil, fmt.Errorf("%w: identity creation failed", core.ErrAuthService)
		}

	default:
		return nil, nil, fmt.Errorf("%w: identity lookup failed", core.ErrAuthService)
	}

	session, err := s.issueSessionWithRetry(identity)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: session issuance failed", core.ErrAuthService)
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishSignIn(ctx, normalized, identity.ID); err != nil {
			// The session is already issued; losing the notification is
			// not worth failing the sign-in.
			log.Warn().Err(err).Str("address", normalized).Msg("failed to publish sign-in event")
		}
	}

	return session, &core.User{ID: identity.ID, WalletAddress: normalized}, nil
}

// issueSessionWithRetry retries once so a transient tokenizer fault does not
// strand a freshly created identity without a session.
func (s *AuthService) issueSessionWithRetry(identity *core.Identity) (*core.BackendSession, error) {
	session, err := s.tokenizer.IssueSession(identity)
	if err == nil {
		return session, nil
	}
	return s.tokenizer.IssueSession(identity)
}

// Login runs the full verification-then-exchange pipeline for a proof.
func (s *AuthService) Login(ctx context.Context, proof core.AuthProof) (*core.BackendSession, *core.User, error) {
	challenge, err := s.VerifyProof(ctx, proof)
	if err != nil {
		return nil, nil, err
	}
	return s.Exchange(ctx, challenge.Address)
}

// Refresh rotates the refresh token and issues a new access/refresh pair.
// The old refresh token is revoked for the rest of its lifetime.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*core.BackendSession, error) {
	grant, err := s.tokenizer.ParseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	revoked, err := s.isRevoked(ctx, grant.RefreshID)
	if err != nil {
		return nil, fmt.Errorf("%w: revocation check failed", core.ErrAuthService)
	}
	if revoked {
		return nil, core.ErrTokenInvalidated
	}

	if err := s.revoke(ctx, grant.RefreshID, time.Until(grant.ExpiresAt)); err != nil {
		return nil, fmt.Errorf("%w: revocation failed", core.ErrAuthService)
	}

	key := grant.Address + "@" + s.identityDomain
	identity, err := s.identities.FindByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: identity lookup failed", core.ErrAuthService)
	}

	session, err := s.issueSessionWithRetry(identity)
	if err != nil {
		return nil, fmt.Errorf("%w: session issuance failed", core.ErrAuthService)
	}
	return session, nil
}

// Logout revokes a refresh token. Expired tokens are still recorded briefly
// so they cannot be replayed under clock skew.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	grant, err := s.tokenizer.ParseRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, core.ErrTokenExpired) {
			return nil
		}
		return err
	}

	ttl := time.Until(grant.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Hour
	}
	if err := s.revoke(ctx, grant.RefreshID, ttl); err != nil {
		return fmt.Errorf("%w: revocation failed", core.ErrAuthService)
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishSignOut(ctx, grant.Address, grant.RefreshID); err != nil {
			log.Warn().Err(err).Str("address", grant.Address).Msg("failed to publish sign-out event")
		}
	}

	return nil
}

// ValidateAccess validates an access token, including revocation of the
// refresh token it is paired with.
func (s *AuthService) ValidateAccess(ctx context.Context, accessToken string) (*core.Grant, error) {
	grant, err := s.tokenizer.ParseAccess(accessToken)
	if err != nil {
		return nil, err
	}

	if grant.RefreshID != "" {
		revoked, err := s.isRevoked(ctx, grant.RefreshID)
		if err != nil {
			return nil, fmt.Errorf("%w: revocation check failed", core.ErrAuthService)
		}
		if revoked {
			return nil, core.ErrTokenInvalidated
		}
	}

	return grant, nil
}

func (s *AuthService) isRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, ok, err := s.store.Get(ctx, revokedKeyPrefix+tokenID)
	return ok, err
}

func (s *AuthService) revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return s.store.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl)
}

// generateCredential returns a fresh 32-byte hex secret.
func generateCredential() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
