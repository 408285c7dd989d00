package passwords

import (
	"context"
	"fmt"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/models"
	bolt "go.etcd.io/bbolt"
)

// DefaultBoltPath is the database file used when no path is configured.
const DefaultBoltPath = "data/security.db"

var (
	securityBucket = []byte("security")
	recordKey      = []byte("record")
)

// BoltStore keeps the record in a bbolt database. Writes are transactional so
// a crash mid-save leaves the previous record intact.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens or creates the database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	if path == "" {
		path = DefaultBoltPath
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(securityBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", securityBucket, err)
	}
	return &BoltStore{db: db}, nil
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Load(_ context.Context) (*models.PasswordRecord, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(securityBucket).Get(recordKey)
		if v != nil {
			// The slice is only valid during the transaction.
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read password record: %w", err)
	}
	if data == nil {
		return nil, ErrNotFound
	}
	return decodeRecord(data)
}

func (s *BoltStore) Save(_ context.Context, rec *models.PasswordRecord) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(securityBucket).Put(recordKey, data)
	})
}

func (s *BoltStore) Delete(_ context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(securityBucket).Delete(recordKey)
	})
}
