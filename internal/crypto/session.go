package crypto

import (
	"context"
	"sync"
)

// Session binds a verified password to a single request. Keys derived for a
// salt are cached so a record encrypted and then decrypted within the same
// request derives each key once. A Session must not outlive its request and
// its keys are never persisted.
type Session struct {
	password string
	pool     *Pool

	mu   sync.Mutex
	keys map[string][]byte
}

// NewSession creates a key session for password. pool may be nil.
func NewSession(password string, pool *Pool) *Session {
	return &Session{
		password: password,
		pool:     pool,
		keys:     make(map[string][]byte),
	}
}

func (s *Session) keyFor(ctx context.Context) keyFunc {
	return func(salt []byte) ([]byte, error) {
		s.mu.Lock()
		k, ok := s.keys[string(salt)]
		s.mu.Unlock()
		if ok {
			return k, nil
		}

		k, err := s.pool.Derive(ctx, s.password, salt)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		if s.keys != nil {
			s.keys[string(salt)] = k
		}
		s.mu.Unlock()
		return k, nil
	}
}

// Encrypt is the session variant of Encrypt.
func (s *Session) Encrypt(ctx context.Context, plaintext string) (string, error) {
	return encrypt(plaintext, s.keyFor(ctx))
}

// Decrypt is the session variant of Decrypt.
func (s *Session) Decrypt(ctx context.Context, envelope string) (string, error) {
	return decrypt(envelope, s.keyFor(ctx))
}

// Seal is the session variant of Seal.
func (s *Session) Seal(ctx context.Context, plaintext string) (string, error) {
	return seal(plaintext, s.keyFor(ctx))
}

// Open is the session variant of Open.
func (s *Session) Open(ctx context.Context, value string) (string, error) {
	return open(value, s.keyFor(ctx))
}

// Close wipes every cached key. The session keeps working afterwards but
// derives keys from scratch.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for salt, k := range s.keys {
		ClearBytes(k)
		delete(s.keys, salt)
	}
}
