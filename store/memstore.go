package store

import (
	"context"
	"sync"
)

// MemStore is a thread-safe in-memory Store. It is the fallback for
// environments without a durable backend and the substitute used in tests.
type MemStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemStore creates a new in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

func (s *MemStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemStore) Close() error {
	return nil
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)
