package client

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/intent-app/auth-service/internal/eth"
)

// WalletSigner abstracts the wallet's personal-sign prompt. Signing waits on
// the user, so implementations must honor context cancellation.
type WalletSigner interface {
	SignMessage(ctx context.Context, address, message string) (string, error)
}

// KeySigner signs with a locally held private key. Used by tests and dev
// tooling in place of a browser wallet.
type KeySigner struct {
	key     *ecdsa.PrivateKey
	address string
}

// NewKeySigner wraps a private key as a WalletSigner.
func NewKeySigner(key *ecdsa.PrivateKey) *KeySigner {
	return &KeySigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey).Hex(),
	}
}

// Address returns the checksummed address controlled by the key.
func (s *KeySigner) Address() string {
	return s.address
}

// SignMessage signs in the personal-sign convention.
func (s *KeySigner) SignMessage(ctx context.Context, address, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !strings.EqualFold(address, s.address) {
		return "", fmt.Errorf("signer does not control address %s", address)
	}
	return eth.SignPersonal(message, s.key)
}
