package passwords

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/models"
)

// DefaultFilePath is where the file store keeps the record when no path is
// configured.
const DefaultFilePath = "data/security.json"

// FileStore keeps the record as an indented JSON document in a single file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path (DefaultFilePath when empty).
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFilePath
	}
	return &FileStore{path: path}
}

// Path returns the file the record lives in.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads and parses the record file.
func (s *FileStore) Load(_ context.Context) (*models.PasswordRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read password record: %w", err)
	}
	return decodeRecord(data)
}

// Save writes the record to a temp file in the same directory and renames it
// over the old one.
func (s *FileStore) Save(_ context.Context, rec *models.PasswordRecord) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	if err := ensureDir(s.path); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)

	tmp, err := os.CreateTemp(dir, ".security-*.json")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp record: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp record: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp record: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace password record: %w", err)
	}
	return nil
}

// Delete removes the record file.
func (s *FileStore) Delete(_ context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete password record: %w", err)
	}
	return nil
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create record directory: %w", err)
	}
	return nil
}
