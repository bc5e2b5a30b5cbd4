package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SaleRepository defines persistence operations for sales
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	// FindByIDForUpdate reads the sale under a row lock so concurrent
	// returns against it serialize on the sale row. Must run inside a
	// transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Sale, error)
	FindByReceiptCode(ctx context.Context, receiptCode string) (*Sale, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Sale, error)
	FindBetween(ctx context.Context, from, to time.Time) ([]Sale, error)
	// Save persists the sale with its items and deduction records
	Save(ctx context.Context, sale *Sale) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// SalesReturnRepository defines persistence operations for returns
type SalesReturnRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SalesReturn, error)
	FindBySale(ctx context.Context, saleID uuid.UUID) ([]SalesReturn, error)
	Save(ctx context.Context, ret *SalesReturn) error
	// ReturnedQuantity sums prior returned quantity for a sale line
	ReturnedQuantity(ctx context.Context, saleItemID uuid.UUID) (decimal.Decimal, error)
}

// ReceiptSequenceRepository hands out receipt codes. Next must be backed by
// an atomic counter at the storage layer; a read-max-then-insert pair is a
// known race under concurrent sales.
type ReceiptSequenceRepository interface {
	// Next reserves and returns the next sequence number for the prefix
	Next(ctx context.Context, prefix string) (int64, error)
}
