package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InMemoryAvailabilityCache is a process-local availability cache for
// single-instance deployments and tests.
type InMemoryAvailabilityCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]inMemoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type inMemoryEntry struct {
	quantity  decimal.Decimal
	expiresAt time.Time
}

// NewInMemoryAvailabilityCache creates a new in-memory cache
func NewInMemoryAvailabilityCache(ttl time.Duration) *InMemoryAvailabilityCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &InMemoryAvailabilityCache{
		entries: make(map[uuid.UUID]inMemoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached quantity and whether it was present
func (c *InMemoryAvailabilityCache) Get(ctx context.Context, productID uuid.UUID) (decimal.Decimal, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[productID]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		return decimal.Zero, false, nil
	}
	return entry.quantity, true, nil
}

// Set stores a quantity read from the authoritative store
func (c *InMemoryAvailabilityCache) Set(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal) error {
	c.mu.Lock()
	c.entries[productID] = inMemoryEntry{
		quantity:  quantity,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
	return nil
}

// Invalidate drops cached quantities after a committed mutation
func (c *InMemoryAvailabilityCache) Invalidate(ctx context.Context, productIDs ...uuid.UUID) error {
	c.mu.Lock()
	for _, id := range productIDs {
		delete(c.entries, id)
	}
	c.mu.Unlock()
	return nil
}
