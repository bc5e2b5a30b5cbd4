package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ExpiryStatus classifies a batch relative to a reference date
type ExpiryStatus string

const (
	ExpiryStatusActive       ExpiryStatus = "active"
	ExpiryStatusExpiringSoon ExpiryStatus = "expiring_soon"
	ExpiryStatusExpired      ExpiryStatus = "expired"
)

// DefaultExpiryHorizonDays is the alerting window for soon-to-expire batches
const DefaultExpiryHorizonDays = 30

// StockBatch is a discrete, dated lot of a product. Quantity only moves
// through the ledger: sale deductions, manual corrections, and configured
// return restocking. A batch is never deleted, only drained to zero.
type StockBatch struct {
	shared.BaseEntity
	ProductID    uuid.UUID
	BatchNumber  string
	Quantity     decimal.Decimal
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	ExpiryDate   time.Time
	PurchaseDate time.Time
	Supplier     string
}

// NewStockBatch creates a new stock batch from a stock purchase
func NewStockBatch(
	productID uuid.UUID,
	batchNumber string,
	quantity, costPrice, sellingPrice decimal.Decimal,
	expiryDate, purchaseDate time.Time,
	supplier string,
) (*StockBatch, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product ID cannot be empty")
	}
	if batchNumber == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Batch number cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Batch quantity must be positive")
	}
	if costPrice.IsNegative() || sellingPrice.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Batch prices cannot be negative")
	}
	if expiryDate.IsZero() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Expiry date is required")
	}
	return &StockBatch{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    productID,
		BatchNumber:  batchNumber,
		Quantity:     quantity,
		CostPrice:    costPrice,
		SellingPrice: sellingPrice,
		ExpiryDate:   expiryDate,
		PurchaseDate: purchaseDate,
		Supplier:     supplier,
	}, nil
}

// IsExpired reports whether the batch has expired as of the given date
func (b *StockBatch) IsExpired(today time.Time) bool {
	return b.ExpiryDate.Before(today)
}

// HasStock reports whether the batch has any remaining quantity
func (b *StockBatch) HasStock() bool {
	return b.Quantity.IsPositive()
}

// IsAvailable reports whether the batch can satisfy new sales as of today
func (b *StockBatch) IsAvailable(today time.Time) bool {
	return b.HasStock() && !b.IsExpired(today)
}

// Classify returns the expiry status of the batch relative to today.
// expired: expiry < today; expiring_soon: today <= expiry < today+horizon.
func (b *StockBatch) Classify(today time.Time, horizonDays int) ExpiryStatus {
	if b.IsExpired(today) {
		return ExpiryStatusExpired
	}
	if b.ExpiryDate.Before(today.AddDate(0, 0, horizonDays)) {
		return ExpiryStatusExpiringSoon
	}
	return ExpiryStatusActive
}

// Margin returns the per-unit margin of the batch
func (b *StockBatch) Margin() decimal.Decimal {
	return b.SellingPrice.Sub(b.CostPrice)
}

// TotalValue returns the remaining quantity valued at cost price
func (b *StockBatch) TotalValue() decimal.Decimal {
	return b.Quantity.Mul(b.CostPrice)
}
