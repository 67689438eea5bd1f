package core

import "time"

// Challenge is a structured EIP-4361 sign-in message.
// Once issued it is immutable; verification re-derives the exact canonical
// text from these fields, so every byte of the formatting matters.
type Challenge struct {
	Domain         string     // Host that requested the signature
	Address        string     // Ethereum address of the signer
	Statement      string     // Human-readable purpose, advisory only
	URI            string     // Origin the challenge was issued from
	Version        string     // Fixed literal "1"
	ChainID        int64      // EIP-155 chain id the wallet must be connected to
	Nonce          string     // Random token, unique per challenge
	IssuedAt       time.Time  // When the challenge was created
	ExpirationTime *time.Time // Optional hard expiry
	Resources      []string   // Optional URIs the session is scoped to
}

// Expired reports whether the challenge expiry has passed at the given time.
// A challenge without an expiration time never expires.
func (c *Challenge) Expired(now time.Time) bool {
	return c.ExpirationTime != nil && c.ExpirationTime.Before(now)
}

// AuthProof carries everything needed to verify address ownership.
// It is constructed once and passed explicitly instead of reading ad hoc
// headers at call sites.
type AuthProof struct {
	Message   string // Canonical formatted challenge text, exactly as signed
	Signature string // Hex-encoded 65-byte [R || S || V] signature
	Address   string // Claimed signer address
}

// Identity is a backend account deterministically derived from a wallet
// address. One address maps to exactly one identity.
type Identity struct {
	ID         string    // Stable internal id
	Key        string    // Deterministic login key derived from the address
	Address    string    // Lowercased wallet address
	Credential string    // High-entropy secret, rotated on every sign-in
	CreatedAt  time.Time // When the identity was first created
}

// BackendSession is the token pair handed to the client after a successful
// exchange. Opaque to everything but the tokenizer.
type BackendSession struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// User identifies the authenticated wallet for downstream attribution.
type User struct {
	ID            string `json:"id"`
	WalletAddress string `json:"wallet_address"`
}

// Grant is the validated content of an issued token.
type Grant struct {
	IdentityID string    // Subject of the token
	Address    string    // Wallet address the session belongs to
	RefreshID  string    // Id of the refresh token this grant is tied to
	IssuedAt   time.Time // When the token was issued
	ExpiresAt  time.Time // When the token expires
}

// RateLimitDecision is the outcome of counting a request against a source's
// fixed window.
type RateLimitDecision struct {
	Allowed    bool          // Whether the request may proceed
	Remaining  int           // Requests left in the current window
	RetryAfter time.Duration // Time until the window resets, when rejected
}
