package storage

import (
	"context"
	"slices"
	"sync"

	"quantisuite/internal/history"
)

// MemoryStore keeps history for the life of the process.
type MemoryStore struct {
	mu      sync.Mutex
	entries []history.Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) ([]history.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries), nil
}

func (s *MemoryStore) Save(ctx context.Context, entries []history.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = slices.Clone(entries)
	return nil
}
