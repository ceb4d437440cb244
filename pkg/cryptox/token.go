package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// RandomString returns size random bytes encoded as base64url without
// padding. Used for salts and generated session names.
func RandomString(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Fingerprint returns a short, log-safe identifier for a token: the first
// 12 characters of its base64url SHA-256. Never log tokens themselves.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])[:12]
}

// DeriveSalt turns a stable label (a session name) into a fixed-size salt
// for NewSealer.
func DeriveSalt(label string) []byte {
	sum := sha256.Sum256([]byte("stockroom/sealer/" + label))
	return sum[:16]
}
