package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateOpaqueToken returns a random token in its raw (sent to the user)
// and hashed (stored) forms. Only the hash is ever persisted, so a leaked
// database snapshot cannot be replayed.
func GenerateOpaqueToken() (raw string, hashed string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate token: %w", err)
	}
	raw = hex.EncodeToString(buf)
	return raw, HashOpaqueToken(raw), nil
}

// HashOpaqueToken maps a raw token to its stored lookup form. A fast hash is
// enough here: the input is 256 bits of randomness, not a password.
func HashOpaqueToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
