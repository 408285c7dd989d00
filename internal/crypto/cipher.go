package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrDecryptionFailed is returned when an envelope cannot be opened: wrong
// password, tampered component or malformed hex. It never means "empty".
var ErrDecryptionFailed = errors.New("decryption failed")

const envelopeParts = 4

// keyFunc resolves the AES key for an envelope salt.
type keyFunc func(salt []byte) ([]byte, error)

func passwordKey(password string) keyFunc {
	return func(salt []byte) ([]byte, error) {
		return DeriveKey(password, salt), nil
	}
}

// Encrypt seals plaintext under password and returns the bare envelope
// salt:iv:tag:ciphertext in lowercase hex. Empty plaintext yields an empty
// result and no envelope.
func Encrypt(plaintext, password string) (string, error) {
	return encrypt(plaintext, passwordKey(password))
}

// Decrypt opens an envelope produced by Encrypt. Values that do not have four
// colon-separated parts are legacy plaintext and are returned unchanged.
func Decrypt(envelope, password string) (string, error) {
	return decrypt(envelope, passwordKey(password))
}

// IsEnvelope reports whether value has the envelope shape: exactly four
// non-empty hex parts. It does not check that the value decrypts.
func IsEnvelope(value string) bool {
	parts := strings.Split(value, ":")
	if len(parts) != envelopeParts {
		return false
	}
	for _, p := range parts {
		if !isHex(p) {
			return false
		}
	}
	return true
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, IVSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

func encrypt(plaintext string, key keyFunc) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	salt, err := GenerateRandom(SaltSize)
	if err != nil {
		return "", err
	}
	iv, err := GenerateRandom(IVSize)
	if err != nil {
		return "", err
	}

	k, err := key(salt)
	if err != nil {
		return "", err
	}
	gcm, err := newGCM(k)
	if err != nil {
		return "", err
	}

	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)
	ciphertext, tag := sealed[:len(sealed)-TagSize], sealed[len(sealed)-TagSize:]

	return strings.Join([]string{
		hex.EncodeToString(salt),
		hex.EncodeToString(iv),
		hex.EncodeToString(tag),
		hex.EncodeToString(ciphertext),
	}, ":"), nil
}

func decrypt(envelope string, key keyFunc) (string, error) {
	if envelope == "" {
		return "", nil
	}

	parts := strings.Split(envelope, ":")
	if len(parts) != envelopeParts {
		return envelope, nil
	}

	var raw [envelopeParts][]byte
	for i, p := range parts {
		if p == "" {
			return "", ErrDecryptionFailed
		}
		b, err := hex.DecodeString(p)
		if err != nil {
			return "", ErrDecryptionFailed
		}
		raw[i] = b
	}
	salt, iv, tag, ciphertext := raw[0], raw[1], raw[2], raw[3]
	if len(iv) != IVSize || len(tag) != TagSize {
		return "", ErrDecryptionFailed
	}

	k, err := key(salt)
	if err != nil {
		return "", err
	}
	gcm, err := newGCM(k)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	sealed := make([]byte, 0, len(ciphertext)+TagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}
