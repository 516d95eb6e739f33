package state

import (
	"context"
	"errors"

	"storefront/internal/domain"
)

// ErrNotFound indicates an absent mapping key.
var ErrNotFound = errors.New("not found")

// MappingStore persists product-to-message display mappings.
// Params: CRUD operations keyed by product ID plus full-map load and reset.
// Returns: backend persistence behavior.
type MappingStore interface {
	Load(ctx context.Context) (map[string]domain.MessageMapping, error)
	Get(ctx context.Context, productID string) (domain.MessageMapping, error)
	Put(ctx context.Context, productID string, mapping domain.MessageMapping) error
	Delete(ctx context.Context, productID string) error
	Reset(ctx context.Context) error
	Close() error
}
