package crypto

import "strings"

// TagPrefix marks a value as an envelope explicitly, so plaintext that happens
// to look like four hex groups is never mistaken for ciphertext.
const TagPrefix = "enc:v1:"

// IsTagged reports whether value carries the explicit envelope tag.
func IsTagged(value string) bool {
	return strings.HasPrefix(value, TagPrefix)
}

// IsTaggedEnvelope reports whether value is the tag followed by a well-formed
// envelope. Text that merely starts with the tag is not.
func IsTaggedEnvelope(value string) bool {
	return IsTagged(value) && IsEnvelope(value[len(TagPrefix):])
}

// IsSealed reports whether value is shaped like an envelope, tagged or legacy
// bare. A bare shape may still be plaintext written before tagging existed.
func IsSealed(value string) bool {
	return IsTaggedEnvelope(value) || IsEnvelope(value)
}

// Seal encrypts plaintext and returns a tagged envelope. Empty plaintext
// yields an empty result.
func Seal(plaintext, password string) (string, error) {
	return seal(plaintext, passwordKey(password))
}

// Open decrypts a tagged or bare envelope. Untagged values that are not
// envelope-shaped come back unchanged.
func Open(value, password string) (string, error) {
	return open(value, passwordKey(password))
}

func seal(plaintext string, key keyFunc) (string, error) {
	env, err := encrypt(plaintext, key)
	if err != nil || env == "" {
		return env, err
	}
	return TagPrefix + env, nil
}

func open(value string, key keyFunc) (string, error) {
	if IsTagged(value) {
		body := strings.TrimPrefix(value, TagPrefix)
		if !IsEnvelope(body) {
			return "", ErrDecryptionFailed
		}
		return decrypt(body, key)
	}
	return decrypt(value, key)
}
