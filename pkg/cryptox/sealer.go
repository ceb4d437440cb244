package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters used to stretch the master key. These match the
// RFC 9106 "second recommended" profile.
const (
	iterations  = 3
	memory      = 64 * 1024
	parallelism = 2
	keyLength   = 32
)

// sealedPrefix marks values produced by Seal so format changes can be
// detected later.
const sealedPrefix = "v1."

var (
	// ErrEmptyKey is returned when a sealer is created without key material.
	ErrEmptyKey = errors.New("cryptox: empty master key")

	// ErrMalformed is returned when a value was not produced by Seal.
	ErrMalformed = errors.New("cryptox: malformed sealed value")
)

// KDFParams tunes the argon2id key derivation. The zero value uses the
// package defaults.
type KDFParams struct {
	Iterations  uint32
	Memory      uint32 // KiB
	Parallelism uint8
}

func (p KDFParams) withDefaults() KDFParams {
	if p.Iterations == 0 {
		p.Iterations = iterations
	}
	if p.Memory == 0 {
		p.Memory = memory
	}
	if p.Parallelism == 0 {
		p.Parallelism = parallelism
	}
	return p
}

// Sealer encrypts short strings (tokens) with AES-256-GCM under a key
// derived from a master secret with argon2id.
// Output format: "v1." + base64url([12-byte nonce][ciphertext][16-byte tag])
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives the encryption key from masterKey and salt. The same
// masterKey and salt always yield the same key, so values sealed by one
// process can be opened by the next.
func NewSealer(masterKey string, salt []byte, params KDFParams) (*Sealer, error) {
	if masterKey == "" {
		return nil, ErrEmptyKey
	}

	p := params.withDefaults()
	key := argon2.IDKey([]byte(masterKey), salt, p.Iterations, p.Memory, p.Parallelism, keyLength)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Sealer{aead: gcm}, nil
}

// Seal encrypts plaintext with a fresh random nonce.
func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(out), nil
}

// Open reverses Seal. Tampered or foreign values fail authentication.
func (s *Sealer) Open(sealed string) (string, error) {
	encoded, ok := strings.CutPrefix(sealed, sealedPrefix)
	if !ok {
		return "", ErrMalformed
	}

	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrMalformed
	}

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize+s.aead.Overhead() {
		return "", ErrMalformed
	}

	plaintext, err := s.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}

	return string(plaintext), nil
}
