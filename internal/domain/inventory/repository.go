package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockBatchRepository is the ledger's persistence boundary. It is the sole
// mutator of batch quantities; sale and return engines go through it.
type StockBatchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockBatch, error)
	// FindByProduct returns all batches for a product, drained ones included
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]StockBatch, error)
	// FindAvailable returns non-expired batches with stock in FEFO order
	FindAvailable(ctx context.Context, productID uuid.UUID, today time.Time) ([]StockBatch, error)
	// FindExpiringSoon returns batches with stock expiring within horizonDays
	FindExpiringSoon(ctx context.Context, today time.Time, horizonDays int, filter shared.Filter) ([]StockBatch, error)
	// FindExpired returns expired batches that still hold stock
	FindExpired(ctx context.Context, today time.Time, filter shared.Filter) ([]StockBatch, error)
	// AvailableQuantity sums quantity over non-expired batches with stock
	AvailableQuantity(ctx context.Context, productID uuid.UUID, today time.Time) (decimal.Decimal, error)
	Save(ctx context.Context, batch *StockBatch) error
	// ApplyDeduction performs an atomic conditional decrement: the quantity
	// is reduced only if it still covers the amount. Returns
	// shared.ErrNotFound when the batch does not exist and
	// shared.ErrConcurrencyConflict when the remaining quantity no longer
	// covers the amount.
	ApplyDeduction(ctx context.Context, batchID uuid.UUID, amount decimal.Decimal) error
	// Restock atomically adds quantity back to a batch (return restocking
	// and positive manual corrections)
	Restock(ctx context.Context, batchID uuid.UUID, amount decimal.Decimal) error
}
