package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

const loginCodeDigits = 6

// generateLoginCode returns a random numeric code, zero padded to six digits.
func generateLoginCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < loginCodeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate login code: %w", err)
	}
	return fmt.Sprintf("%0*d", loginCodeDigits, n), nil
}

// generateConfirmCode returns a random opaque token used to bind a pending
// challenge to the client that initiated it.
func generateConfirmCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate confirm code: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
