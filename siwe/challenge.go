package siwe

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/intent-app/auth-service/core"
)

// NonceLength is the number of random bytes in a nonce; hex-encoding doubles
// it on the wire.
const NonceLength = 16

// DefaultStatement is used when a challenge is issued without an explicit
// purpose text.
const DefaultStatement = "Sign this message to authenticate with INTENT."

// GenerateNonce returns a fresh unpredictable nonce from the system CSPRNG.
func GenerateNonce() (string, error) {
	buf := make([]byte, NonceLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// ChallengeParams are the caller-supplied parts of a new challenge. Domain
// and URI come from the issuing site's origin.
type ChallengeParams struct {
	Domain            string
	URI               string
	Address           string
	ChainID           int64
	Nonce             string
	Statement         string
	ExpirationMinutes int
	Resources         []string
}

// NewChallenge assembles a complete challenge. IssuedAt is the current time
// truncated to millisecond precision so formatting round-trips exactly.
func NewChallenge(p ChallengeParams) *core.Challenge {
	now := time.Now().UTC().Truncate(time.Millisecond)

	statement := p.Statement
	if statement == "" {
		statement = DefaultStatement
	}

	c := &core.Challenge{
		Domain:    p.Domain,
		Address:   p.Address,
		Statement: statement,
		URI:       p.URI,
		Version:   "1",
		ChainID:   p.ChainID,
		Nonce:     p.Nonce,
		IssuedAt:  now,
		Resources: p.Resources,
	}

	if p.ExpirationMinutes > 0 {
		exp := now.Add(time.Duration(p.ExpirationMinutes) * time.Minute)
		c.ExpirationTime = &exp
	}

	return c
}
