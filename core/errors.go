package core

import "errors"

var (
	// Verification failures. Each maps to a distinct reason so callers can
	// surface it instead of a generic failure.
	ErrMalformedMessage = errors.New("malformed sign-in message")
	ErrInvalidAddress   = errors.New("invalid ethereum address")
	ErrAddressMismatch  = errors.New("message address does not match claimed address")
	ErrDomainMismatch   = errors.New("message domain does not match serving host")
	ErrChallengeExpired = errors.New("challenge has expired")
	ErrNonceConsumed    = errors.New("nonce has already been used")
	ErrBadSignature     = errors.New("invalid signature")

	// Token lifecycle failures.
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenInvalidated = errors.New("token has been invalidated")
	ErrInvalidToken     = errors.New("invalid token")

	// Service-level failures.
	ErrIdentityNotFound = errors.New("identity not found")
	ErrAuthService      = errors.New("auth service unavailable")
	ErrRateLimited      = errors.New("too many requests")
)
