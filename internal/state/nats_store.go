package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"storefront/internal/config"
	"storefront/internal/domain"
)

// NATSStore persists message mappings in one JetStream KV bucket.
// Params: NATS connection and KV bucket handle.
// Returns: KV-backed mapping store for shared-state deployments.
type NATSStore struct {
	nc *nats.Conn
	kv nats.KeyValue
}

// NewNATSStore connects and opens or creates the mapping bucket.
// Params: derived NATS mapping settings from config.
// Returns: initialized NATS store or setup error.
func NewNATSStore(settings config.NATSMappingConfig) (*NATSStore, error) {
	nc, err := nats.Connect(strings.Join(settings.URL, ","))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	kv, err := js.KeyValue(settings.Bucket)
	if err != nil {
		if !settings.AllowCreateBucket {
			nc.Close()
			return nil, fmt.Errorf("open mapping bucket %q: %w", settings.Bucket, err)
		}
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket: settings.Bucket,
		})
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("create mapping bucket %q: %w", settings.Bucket, err)
		}
	}

	return &NATSStore{nc: nc, kv: kv}, nil
}

// Load reads all mappings from the bucket.
// Params: ctx unused; the KV client manages its own deadlines.
// Returns: product ID to mapping map, skipping undecodable entries.
func (s *NATSStore) Load(_ context.Context) (map[string]domain.MessageMapping, error) {
	keys, err := s.kv.Keys()
	if err != nil {
		if errors.Is(err, nats.ErrNoKeysFound) {
			return map[string]domain.MessageMapping{}, nil
		}
		return nil, fmt.Errorf("list mapping keys: %w", err)
	}

	out := make(map[string]domain.MessageMapping, len(keys))
	for _, key := range keys {
		entry, err := s.kv.Get(key)
		if err != nil {
			if err == nats.ErrKeyNotFound {
				continue
			}
			return nil, fmt.Errorf("get mapping %q: %w", key, err)
		}
		var mapping domain.MessageMapping
		if err := json.Unmarshal(entry.Value(), &mapping); err != nil {
			continue
		}
		out[key] = mapping
	}
	return out, nil
}

// Get reads one mapping by product ID.
// Params: product ID key.
// Returns: mapping or ErrNotFound.
func (s *NATSStore) Get(_ context.Context, productID string) (domain.MessageMapping, error) {
	entry, err := s.kv.Get(productID)
	if err != nil {
		if err == nats.ErrKeyNotFound {
			return domain.MessageMapping{}, ErrNotFound
		}
		return domain.MessageMapping{}, fmt.Errorf("get mapping: %w", err)
	}

	var mapping domain.MessageMapping
	if err := json.Unmarshal(entry.Value(), &mapping); err != nil {
		return domain.MessageMapping{}, fmt.Errorf("decode mapping: %w", err)
	}
	return mapping, nil
}

// Put writes one mapping unconditionally.
// Params: product ID key and mapping payload.
// Returns: encode or publish error.
func (s *NATSStore) Put(_ context.Context, productID string, mapping domain.MessageMapping) error {
	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}
	if _, err := s.kv.Put(productID, body); err != nil {
		return fmt.Errorf("put mapping: %w", err)
	}
	return nil
}

// Delete removes one mapping.
// Params: product ID key.
// Returns: delete error; an absent key is a no-op.
func (s *NATSStore) Delete(_ context.Context, productID string) error {
	if err := s.kv.Delete(productID); err != nil && err != nats.ErrKeyNotFound {
		return fmt.Errorf("delete mapping: %w", err)
	}
	return nil
}

// Reset removes every mapping key from the bucket.
// Params: ctx unused; the KV client manages its own deadlines.
// Returns: first delete error.
func (s *NATSStore) Reset(_ context.Context) error {
	keys, err := s.kv.Keys()
	if err != nil {
		if errors.Is(err, nats.ErrNoKeysFound) {
			return nil
		}
		return fmt.Errorf("list mapping keys: %w", err)
	}
	for _, key := range keys {
		if err := s.kv.Delete(key); err != nil && err != nats.ErrKeyNotFound {
			return fmt.Errorf("delete mapping %q: %w", key, err)
		}
	}
	return nil
}

// Close closes the underlying NATS connection.
// Params: none.
// Returns: nil after connection close.
func (s *NATSStore) Close() error {
	s.nc.Close()
	return nil
}
