// Package passwords persists the single vault password record. Backends are
// interchangeable behind PasswordStore.
package passwords

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/config"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/models"
)

var (
	// ErrNotFound is returned by Load when no record has been stored.
	ErrNotFound = errors.New("password record not found")
	// ErrCorrupt is returned by Load when the stored record cannot be parsed.
	ErrCorrupt = errors.New("password record is corrupt")
)

// PasswordStore loads, saves and deletes the password record.
type PasswordStore interface {
	// Load returns the stored record or ErrNotFound.
	Load(ctx context.Context) (*models.PasswordRecord, error)
	// Save replaces the stored record. Readers never observe a partial write.
	Save(ctx context.Context, rec *models.PasswordRecord) error
	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context) error
}

// Open builds the backend selected by cfg.Backend. An empty backend means
// the JSON file store.
func Open(cfg config.Store) (PasswordStore, error) {
	switch cfg.Backend {
	case "", config.StoreFile:
		return NewFileStore(cfg.Path), nil
	case config.StoreBolt:
		return OpenBoltStore(cfg.Path)
	case config.StoreKeyring:
		return NewKeyringStore(cfg.KeyringUser), nil
	case config.StoreVault:
		return NewVaultStore(cfg)
	case config.StoreMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown password store backend %q", cfg.Backend)
	}
}

func encodeRecord(rec *models.PasswordRecord) ([]byte, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode password record: %w", err)
	}
	return data, nil
}

func decodeRecord(data []byte) (*models.PasswordRecord, error) {
	var rec models.PasswordRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return &rec, nil
}
