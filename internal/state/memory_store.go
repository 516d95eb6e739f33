package state

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

// MemoryStore keeps message mappings in process memory.
// Params: mutex-guarded map keyed by product ID.
// Returns: in-memory mapping store for tests and ephemeral runs.
type MemoryStore struct {
	mu       sync.Mutex
	mappings map[string]domain.MessageMapping
}

// NewMemoryStore builds an empty in-memory mapping store.
// Params: none.
// Returns: initialized store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mappings: make(map[string]domain.MessageMapping),
	}
}

// Load returns a copy of all mappings.
// Params: ctx unused for the memory backend.
// Returns: product ID to mapping copy.
func (s *MemoryStore) Load(_ context.Context) (map[string]domain.MessageMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]domain.MessageMapping, len(s.mappings))
	for id, mapping := range s.mappings {
		out[id] = mapping
	}
	return out, nil
}

// Get reads one mapping by product ID.
// Params: product ID key.
// Returns: mapping or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, productID string) (domain.MessageMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, ok := s.mappings[productID]
	if !ok {
		return domain.MessageMapping{}, ErrNotFound
	}
	return mapping, nil
}

// Put writes one mapping.
// Params: product ID key and mapping payload.
// Returns: nil.
func (s *MemoryStore) Put(_ context.Context, productID string, mapping domain.MessageMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mappings[productID] = mapping
	return nil
}

// Delete removes one mapping.
// Params: product ID key.
// Returns: nil; deleting an absent key is a no-op.
func (s *MemoryStore) Delete(_ context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.mappings, productID)
	return nil
}

// Reset drops all mappings.
// Params: ctx unused for the memory backend.
// Returns: nil.
func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mappings = make(map[string]domain.MessageMapping)
	return nil
}

// Close releases the store.
// Params: none.
// Returns: nil.
func (s *MemoryStore) Close() error {
	return nil
}
