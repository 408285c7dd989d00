package passwords

import (
	"context"
	"sync"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/models"
)

// MemoryStore keeps the record in process memory. Used by tests and by
// throwaway servers.
type MemoryStore struct {
	mu  sync.RWMutex
	rec *models.PasswordRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (*models.PasswordRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rec == nil {
		return nil, ErrNotFound
	}
	cp := *s.rec
	return &cp, nil
}

func (s *MemoryStore) Save(_ context.Context, rec *models.PasswordRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	s.rec = &cp
	return nil
}

func (s *MemoryStore) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = nil
	return nil
}
