package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashSecret returns a SHA-256 hash of a one-time secret (TFA code, confirm
// code, reset code), hex-encoded. Used for storing and comparing short-lived
// secrets without storing the raw value.
func HashSecret(secret string) string {
	h := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(h[:])
}

// SecretEqual performs constant-time comparison of the provided secret's hash
// with the stored hash. Returns true only if they match. An empty stored hash
// never matches.
func SecretEqual(provided, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	providedHash := HashSecret(provided)
	return subtle.ConstantTimeCompare([]byte(providedHash), []byte(storedHash)) == 1
}
