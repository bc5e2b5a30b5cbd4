package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AvailabilityCache is the read-model cache over availableQuantity. The
// transactional store stays authoritative: the cache is only ever filled
// from committed reads and invalidated on every committed mutation, never
// written to directly by business logic.
type AvailabilityCache interface {
	// Get returns the cached quantity and whether it was present
	Get(ctx context.Context, productID uuid.UUID) (decimal.Decimal, bool, error)
	// Set stores a quantity read from the authoritative store
	Set(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal) error
	// Invalidate drops cached quantities after a committed mutation
	Invalidate(ctx context.Context, productIDs ...uuid.UUID) error
}
