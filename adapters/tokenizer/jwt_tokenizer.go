package tokenizer

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/intent-app/auth-service/core"
	"github.com/intent-app/auth-service/ports"
)

const AudienceAccess = "session:access"
const AudienceRefresh = "session:refresh"

// JWTTokenizer implements the Tokenizer interface using ES256 JWTs.
type JWTTokenizer struct {
	signKey    *ecdsa.PrivateKey
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTTokenizer creates a new JWT tokenizer.
func NewJWTTokenizer(signKey *ecdsa.PrivateKey, accessTTL, refreshTTL time.Duration) ports.Tokenizer {
	return &JWTTokenizer{
		signKey:    signKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueSession creates a fresh access/refresh pair for an identity.
func (j *JWTTokenizer) IssueSession(identity *core.Identity) (*core.BackendSession, error) {
	now := time.Now()
	refreshID := uuid.New().String()

	accessClaims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Audience:  jwt.ClaimStrings{AudienceAccess},
		},
		Wallet:    identity.Address,
		RefreshID: refreshID,
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodES256, accessClaims).SignedString(j.signKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshClaims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			ID:        refreshID,
			ExpiresAt: jwt.NewNumericDate(now.Add(j.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Audience:  jwt.ClaimStrings{AudienceRefresh},
		},
		Wallet: identity.Address,
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodES256, refreshClaims).SignedString(j.signKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &core.BackendSession{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(j.accessTTL.Seconds()),
		TokenType:    "bearer",
	}, nil
}

// ParseAccess validates an access token and returns its grant.
func (j *JWTTokenizer) ParseAccess(tokenStr string) (*core.Grant, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, j.keyFunc, jwt.WithAudience(AudienceAccess))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrTokenExpired
		}
		return nil, core.ErrInvalidToken
	}
	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok {
		return nil, core.ErrInvalidToken
	}

	return &core.Grant{
		IdentityID: claims.Subject,
		Address:    claims.Wallet,
		RefreshID:  claims.RefreshID,
		IssuedAt:   claims.IssuedAt.Time,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}

// ParseRefresh validates a refresh token and returns its grant. The JWT id
// doubles as the refresh token id used for revocation.
func (j *JWTTokenizer) ParseRefresh(tokenStr string) (*core.Grant, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &RefreshClaims{}, j.keyFunc, jwt.WithAudience(AudienceRefresh))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrTokenExpired
		}
		return nil, core.ErrInvalidToken
	}
	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*RefreshClaims)
	if !ok {
		return nil, core.ErrInvalidToken
	}

	return &core.Grant{
		IdentityID: claims.Subject,
		Address:    claims.Wallet,
		RefreshID:  claims.ID,
		IssuedAt:   claims.IssuedAt.Time,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}

func (j *JWTTokenizer) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return &j.signKey.PublicKey, nil
}
