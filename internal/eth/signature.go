// Package eth wraps go-ethereum's EIP-191 personal-sign scheme: hashing a
// message with the Ethereum signed-message prefix, recovering the signing
// address, and producing wallet-compatible signatures.
package eth

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the wire size of an [R || S || V] signature.
const SignatureLength = 65

// RecoverAddress returns the address that produced the signature over the
// prefixed hash of message. The V byte is accepted in both the raw (0/1) and
// wallet (27/28) conventions.
func RecoverAddress(message string, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes, got %d", SignatureLength, len(sig))
	}

	// Work on a copy; V normalization must not mutate the caller's bytes.
	normalized := make([]byte, SignatureLength)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}

	hash := accounts.TextHash([]byte(message))

	pubKey, err := crypto.SigToPub(hash, normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("recover public key: %w", err)
	}

	return crypto.PubkeyToAddress(*pubKey), nil
}

// Verify checks that signatureHex was produced over message by the key
// controlling address. Any decoding or recovery fault reports as a plain
// error; callers decide how to classify it.
func Verify(message, signatureHex, address string) (bool, error) {
	sig, err := hexutil.Decode(signatureHex)
	if err != nil {
		return false, fmt.Errorf("decode signature: %w", err)
	}

	recovered, err := RecoverAddress(message, sig)
	if err != nil {
		return false, err
	}

	return strings.EqualFold(recovered.Hex(), address), nil
}

// SignPersonal signs message with key in the personal-sign convention
// (V offset by 27, hex encoded), matching what browser wallets emit.
func SignPersonal(message string, key *ecdsa.PrivateKey) (string, error) {
	hash := accounts.TextHash([]byte(message))

	sig, err := crypto.Sign(hash, key)
	if err != nil {
		return "", fmt.Errorf("sign message: %w", err)
	}
	sig[64] += 27

	return hexutil.Encode(sig), nil
}
