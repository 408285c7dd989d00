// Package crypto implements the password-derived field encryption that
// protects idea and tool fields at rest, together with the salted password
// hash used to verify the vault password.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize   = 32     // random salt per envelope and per password hash
	IVSize     = 16     // GCM nonce carried in every envelope
	TagSize    = 16     // GCM authentication tag
	KeySize    = 32     // AES-256 key
	HashSize   = 64     // password verification hash
	Iterations = 100000 // PBKDF2-SHA256 rounds
)

// DeriveKey turns a password and salt into an AES-256 key.
// The same password and salt always produce the same key.
func DeriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, Iterations, KeySize, sha256.New)
}

func deriveHash(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, Iterations, HashSize, sha256.New)
}

// GenerateRandom returns n bytes from crypto/rand.
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}

// ClearBytes zeroes a byte slice holding key material.
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
