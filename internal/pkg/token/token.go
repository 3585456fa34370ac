package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// NewLinkToken generates a cryptographically random 64-character hex token
// (256 bits of entropy) for magic links.
func NewLinkToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate link token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewOTPCode generates a fixed-length numeric code drawn uniformly from
// digits using crypto/rand.
func NewOTPCode(length int) (string, error) {
	const digits = "0123456789"
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", fmt.Errorf("generate otp: %w", err)
		}
		b[i] = digits[n.Int64()]
	}
	return string(b), nil
}
