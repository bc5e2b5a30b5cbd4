package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a sale was paid
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodCard   PaymentMethod = "CARD"
	PaymentMethodMobile PaymentMethod = "MOBILE"
	PaymentMethodCredit PaymentMethod = "CREDIT"
)

// IsValid checks if the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodMobile, PaymentMethodCredit:
		return true
	}
	return false
}

// BatchDeductionSchemaVersion is the current version of the deduction
// record schema. Validated at the persistence boundary.
const BatchDeductionSchemaVersion = 1

// BatchDeduction is the audit record of one batch drawn down by a sale
// line, in FEFO order. It is the only durable link from a sale line back
// to specific batches.
type BatchDeduction struct {
	SchemaVersion int             `json:"schema_version"`
	BatchID       uuid.UUID       `json:"batch_id"`
	BatchNumber   string          `json:"batch_number"`
	Quantity      decimal.Decimal `json:"quantity"`
	ExpiryDate    time.Time       `json:"expiry_date"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
}

// Validate checks the deduction record against its schema
func (d BatchDeduction) Validate() error {
	if d.SchemaVersion != BatchDeductionSchemaVersion {
		return shared.NewDomainError("VALIDATION_ERROR", "Unsupported batch deduction schema version")
	}
	if d.BatchID == uuid.Nil {
		return shared.NewDomainError("VALIDATION_ERROR", "Batch deduction requires a batch ID")
	}
	if !d.Quantity.IsPositive() {
		return shared.NewDomainError("VALIDATION_ERROR", "Batch deduction quantity must be positive")
	}
	return nil
}

// SaleItem is one line of a sale with its batch audit trail
type SaleItem struct {
	ID          uuid.UUID
	SaleID      uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	Deductions  []BatchDeduction
	CreatedAt   time.Time
}

// Sale is an immutable record of a completed point-of-sale transaction.
// Only the append-only history of returns referencing it grows afterwards.
type Sale struct {
	shared.BaseEntity
	ReceiptCode   string
	TotalAmount   decimal.Decimal
	PaymentMethod PaymentMethod
	OperatorID    string
	Items         []SaleItem
}

// NewSale creates a sale shell; lines are attached with AddItem
func NewSale(receiptCode string, paymentMethod PaymentMethod, operatorID string, at time.Time) (*Sale, error) {
	if receiptCode == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Receipt code cannot be empty")
	}
	if !paymentMethod.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unknown payment method")
	}
	if operatorID == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Operator ID cannot be empty")
	}
	sale := &Sale{
		BaseEntity:    shared.NewBaseEntity(),
		ReceiptCode:   receiptCode,
		TotalAmount:   decimal.Zero,
		PaymentMethod: paymentMethod,
		OperatorID:    operatorID,
		Items:         make([]SaleItem, 0, 4),
	}
	sale.CreatedAt = at
	sale.UpdatedAt = at
	return sale, nil
}

// AddItem appends a line with its deduction plan and updates the total
func (s *Sale) AddItem(productID uuid.UUID, productName string, quantity, unitPrice decimal.Decimal, deductions []BatchDeduction) (*SaleItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Sale quantity must be positive")
	}
	if !unitPrice.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unit price must be positive")
	}
	deducted := decimal.Zero
	for _, d := range deductions {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		deducted = deducted.Add(d.Quantity)
	}
	if !deducted.Equal(quantity) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Deductions must cover the sold quantity exactly")
	}

	item := SaleItem{
		ID:          uuid.New(),
		SaleID:      s.ID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   quantity.Mul(unitPrice),
		Deductions:  deductions,
		CreatedAt:   s.CreatedAt,
	}
	s.Items = append(s.Items, item)
	s.TotalAmount = s.TotalAmount.Add(item.LineTotal)
	return &s.Items[len(s.Items)-1], nil
}

// WithinReturnWindow reports whether the sale can still accept returns
func (s *Sale) WithinReturnWindow(now time.Time, window time.Duration) bool {
	return !now.After(s.CreatedAt.Add(window))
}

// FindItem looks up a sale line by its ID
func (s *Sale) FindItem(itemID uuid.UUID) (*SaleItem, bool) {
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			return &s.Items[i], true
		}
	}
	return nil, false
}
