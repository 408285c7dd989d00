package crypto

import (
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// HashPassword returns salt_hex:hash_hex for password. The first KeySize
// bytes of the hash equal DeriveKey under the same salt, so the salt is drawn
// fresh here and never shared with an envelope.
func HashPassword(password string) (string, error) {
	salt, err := GenerateRandom(SaltSize)
	if err != nil {
		return "", err
	}
	hash := deriveHash(password, salt)
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(hash), nil
}

// VerifyPassword checks password against a value produced by HashPassword
// using a constant-time comparison. Malformed input never verifies.
func VerifyPassword(password, salted string) bool {
	saltHex, hashHex, ok := strings.Cut(salted, ":")
	if !ok || saltHex == "" || hashHex == "" {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}
	got := deriveHash(password, salt)
	return subtle.ConstantTimeCompare(want, got) == 1
}

// HashSalt returns the salt component of a salted hash, or "" if malformed.
func HashSalt(salted string) string {
	saltHex, _, ok := strings.Cut(salted, ":")
	if !ok {
		return ""
	}
	return saltHex
}
