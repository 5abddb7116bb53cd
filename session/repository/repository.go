// Package repository provides the keyed blob store behind the session
// service. The store holds one JSON blob per key; swapping the backing
// store never touches the title-generation logic.
package repository

import (
	"context"
	"sync"
)

// Store is a keyed persistent store for JSON-serializable blobs, the only
// storage primitive the session service requires.
type Store interface {
	// Get returns the blob for key. The second result is false when the
	// key has never been written.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set writes the blob for key.
	Set(ctx context.Context, key string, data []byte) error
	// Delete removes the key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

// MemoryStore is an in-process Store used for tests and single-node
// deployments without Redis.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[key]
	if !ok {
		return nil, false, nil
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	return copied, true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, data []byte) error {
	copied := make([]byte, len(data))
	copy(copied, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = copied
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
