package tokenizer

import "github.com/golang-jwt/jwt/v5"

// AccessClaims combines standard claims with access-specific ones.
type AccessClaims struct {
	jwt.RegisteredClaims
	Wallet    string `json:"wallet"` // Lowercased wallet address
	RefreshID string `json:"rid"`    // Id of the refresh token in the same pair
}

// RefreshClaims combine standard claims with the wallet address.
type RefreshClaims struct {
	jwt.RegisteredClaims
	Wallet string `json:"wallet"`
}
