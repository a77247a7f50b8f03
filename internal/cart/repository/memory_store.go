package repository

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

// MemoryStore keeps the encoded cart in process memory. Used by tests and
// the "memory" backend.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) ([]domain.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decodeItems(s.data)
}

func (s *MemoryStore) Save(ctx context.Context, items []domain.LineItem) error {
	data, err := encodeItems(items)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.data = nil
	s.mu.Unlock()
	return nil
}
