package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"storefront/internal/domain"
)

// FileStore persists message mappings as one JSON file for single-instance mode.
// Params: file path and in-memory working copy guarded by mutex.
// Returns: file-backed mapping store implementation.
type FileStore struct {
	mu       sync.Mutex
	path     string
	mappings map[string]domain.MessageMapping
}

// NewFileStore opens or initializes the mapping file.
// Params: path to the JSON mapping file.
// Returns: initialized store; a missing or unreadable file starts empty.
//
// A corrupt file is treated as empty so one bad write never blocks startup,
// but the decode error is surfaced for logging.
func NewFileStore(path string) (*FileStore, error) {
	store := &FileStore{
		path:     path,
		mappings: make(map[string]domain.MessageMapping),
	}

	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return store, fmt.Errorf("read mapping file %q: %w", path, err)
	}
	if len(body) == 0 {
		return store, nil
	}
	if err := json.Unmarshal(body, &store.mappings); err != nil {
		store.mappings = make(map[string]domain.MessageMapping)
		return store, fmt.Errorf("decode mapping file %q: %w", path, err)
	}
	return store, nil
}

// Load returns a copy of all persisted mappings.
// Params: ctx unused for the file backend.
// Returns: product ID to mapping copy.
func (s *FileStore) Load(_ context.Context) (map[string]domain.MessageMapping, error) {
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
func (s *FileStore) Get(_ context.Context, productID string) (domain.MessageMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, ok := s.mappings[productID]
	if !ok {
		return domain.MessageMapping{}, ErrNotFound
	}
	return mapping, nil
}

// Put writes one mapping and flushes the file.
// Params: product ID key and mapping payload.
// Returns: persist error.
func (s *FileStore) Put(_ context.Context, productID string, mapping domain.MessageMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mappings[productID] = mapping
	return s.persistLocked()
}

// Delete removes one mapping and flushes the file.
// Params: product ID key.
// Returns: persist error; deleting an absent key is a no-op.
func (s *FileStore) Delete(_ context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.mappings[productID]; !ok {
		return nil
	}
	delete(s.mappings, productID)
	return s.persistLocked()
}

// Reset drops all mappings and deletes the backing file.
// Params: ctx unused for the file backend.
// Returns: remove error; a missing file is a no-op.
func (s *FileStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mappings = make(map[string]domain.MessageMapping)
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove mapping file: %w", err)
	}
	return nil
}

// Close releases the store.
// Params: none.
// Returns: nil; the file backend holds no open handles.
func (s *FileStore) Close() error {
	return nil
}

// persistLocked writes the full map through a temp file and rename.
// Params: none; caller holds the mutex.
// Returns: encode or filesystem error.
func (s *FileStore) persistLocked() error {
	body, err := json.MarshalIndent(s.mappings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mappings: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp mapping file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp mapping file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp mapping file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace mapping file: %w", err)
	}
	return nil
}
