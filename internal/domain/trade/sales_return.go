package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultReturnWindow is the period after a sale during which items may be
// returned.
const DefaultReturnWindow = 48 * time.Hour

// RestockPolicy controls what happens to stock when a return completes
type RestockPolicy string

const (
	// RestockPolicyNone discards returned stock; batch quantities are untouched
	RestockPolicyNone RestockPolicy = "none"
	// RestockPolicyOriginalBatch credits returned quantity back to the
	// batches the sale line was drawn from, in deduction order
	RestockPolicyOriginalBatch RestockPolicy = "original_batch"
)

// IsValid checks if the restock policy is known
func (p RestockPolicy) IsValid() bool {
	return p == RestockPolicyNone || p == RestockPolicyOriginalBatch
}

// ReturnItem is one returned line, referencing the original sale line
type ReturnItem struct {
	ID           uuid.UUID
	ReturnID     uuid.UUID
	SaleItemID   uuid.UUID
	ProductID    uuid.UUID
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	RefundAmount decimal.Decimal
	Reason       string
	CreatedAt    time.Time
}

// SalesReturn records returned quantities against exactly one prior sale.
// Across all returns of a sale, per line the returned total never exceeds
// the sold quantity.
type SalesReturn struct {
	shared.BaseEntity
	SaleID      uuid.UUID
	ReceiptCode string
	OperatorID  string
	TotalRefund decimal.Decimal
	Items       []ReturnItem
}

// NewSalesReturn creates a return shell for the given sale
func NewSalesReturn(saleID uuid.UUID, receiptCode, operatorID string, at time.Time) (*SalesReturn, error) {
	if saleID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Sale ID cannot be empty")
	}
	if operatorID == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Operator ID cannot be empty")
	}
	ret := &SalesReturn{
		BaseEntity:  shared.NewBaseEntity(),
		SaleID:      saleID,
		ReceiptCode: receiptCode,
		OperatorID:  operatorID,
		TotalRefund: decimal.Zero,
		Items:       make([]ReturnItem, 0, 2),
	}
	ret.CreatedAt = at
	ret.UpdatedAt = at
	return ret, nil
}

// AddItem appends a returned line. remaining is the still-returnable
// quantity for the sale line after all prior returns; the requested
// quantity must satisfy 0 < qty <= remaining.
func (r *SalesReturn) AddItem(saleItem *SaleItem, quantity, remaining decimal.Decimal, reason string) (*ReturnItem, error) {
	if saleItem == nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Sale item is required")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Return quantity must be positive")
	}
	if quantity.GreaterThan(remaining) {
		return nil, shared.ErrReturnQuantityExceeded.WithDetails(map[string]any{
			"sale_item_id": saleItem.ID.String(),
			"requested":    quantity.String(),
			"remaining":    remaining.String(),
		})
	}

	item := ReturnItem{
		ID:           uuid.New(),
		ReturnID:     r.ID,
		SaleItemID:   saleItem.ID,
		ProductID:    saleItem.ProductID,
		Quantity:     quantity,
		UnitPrice:    saleItem.UnitPrice,
		RefundAmount: quantity.Mul(saleItem.UnitPrice),
		Reason:       reason,
		CreatedAt:    r.CreatedAt,
	}
	r.Items = append(r.Items, item)
	r.TotalRefund = r.TotalRefund.Add(item.RefundAmount)
	return &r.Items[len(r.Items)-1], nil
}
