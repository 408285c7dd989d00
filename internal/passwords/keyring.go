package passwords

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/models"
	"github.com/zalando/go-keyring"
)

const (
	keyringService = "idea-hub"
	defaultKeyring = "security"
)

// KeyringStore keeps the record in the OS keyring (Keychain, Secret Service,
// Credential Manager).
type KeyringStore struct {
	user string
}

// NewKeyringStore returns a store writing under the given keyring account.
func NewKeyringStore(user string) *KeyringStore {
	if user == "" {
		user = defaultKeyring
	}
	return &KeyringStore{user: user}
}

func (s *KeyringStore) Load(_ context.Context) (*models.PasswordRecord, error) {
	data, err := keyring.Get(keyringService, s.user)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read keyring: %w", err)
	}
	return decodeRecord([]byte(data))
}

func (s *KeyringStore) Save(_ context.Context, rec *models.PasswordRecord) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	if err := keyring.Set(keyringService, s.user, string(data)); err != nil {
		return fmt.Errorf("write keyring: %w", err)
	}
	return nil
}

func (s *KeyringStore) Delete(_ context.Context) error {
	err := keyring.Delete(keyringService, s.user)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete keyring entry: %w", err)
	}
	return nil
}
