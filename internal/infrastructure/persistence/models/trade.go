package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for the Sale aggregate root.
type SaleModel struct {
	BaseModel
	ReceiptCode   string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentMethod string          `gorm:"type:varchar(20);not null"`
	OperatorID    string          `gorm:"type:varchar(100);not null;index"`
	Items         []SaleItemModel `gorm:"foreignKey:SaleID;references:ID"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale entity.
func (m *SaleModel) ToDomain() (*trade.Sale, error) {
	sale := &trade.Sale{
		BaseEntity:    m.BaseModel.ToDomain(),
		ReceiptCode:   m.ReceiptCode,
		TotalAmount:   m.TotalAmount,
		PaymentMethod: trade.PaymentMethod(m.PaymentMethod),
		OperatorID:    m.OperatorID,
		Items:         make([]trade.SaleItem, len(m.Items)),
	}
	for i := range m.Items {
		item, err := m.Items[i].ToDomain()
		if err != nil {
			return nil, err
		}
		sale.Items[i] = *item
	}
	return sale, nil
}

// FromDomain populates the persistence model from a domain Sale entity.
func (m *SaleModel) FromDomain(s *trade.Sale) error {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.ReceiptCode = s.ReceiptCode
	m.TotalAmount = s.TotalAmount
	m.PaymentMethod = string(s.PaymentMethod)
	m.OperatorID = s.OperatorID
	m.Items = make([]SaleItemModel, len(s.Items))
	for i := range s.Items {
		if err := m.Items[i].FromDomain(&s.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

// SaleModelFromDomain creates a new persistence model from a domain Sale entity.
func SaleModelFromDomain(s *trade.Sale) (*SaleModel, error) {
	m := &SaleModel{}
	if err := m.FromDomain(s); err != nil {
		return nil, err
	}
	return m, nil
}

// SaleItemModel is the persistence model for one sale line. The batch
// deduction records are stored as a versioned JSON document; they are an
// immutable audit trail, never queried relationally.
type SaleItemModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName    string          `gorm:"type:varchar(200);not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DeductionsJSON string          `gorm:"column:deductions;type:jsonb;not null;default:'[]'"`
	CreatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the persistence model to a domain SaleItem.
func (m *SaleItemModel) ToDomain() (*trade.SaleItem, error) {
	var deductions []trade.BatchDeduction
	if m.DeductionsJSON != "" {
		if err := json.Unmarshal([]byte(m.DeductionsJSON), &deductions); err != nil {
			return nil, fmt.Errorf("failed to decode deductions for sale item %s: %w", m.ID, err)
		}
	}
	for _, d := range deductions {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("invalid deduction record on sale item %s: %w", m.ID, err)
		}
	}
	return &trade.SaleItem{
		ID:          m.ID,
		SaleID:      m.SaleID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		LineTotal:   m.LineTotal,
		Deductions:  deductions,
		CreatedAt:   m.CreatedAt,
	}, nil
}

// FromDomain populates the persistence model from a domain SaleItem.
func (m *SaleItemModel) FromDomain(item *trade.SaleItem) error {
	for _, d := range item.Deductions {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	data, err := json.Marshal(item.Deductions)
	if err != nil {
		return fmt.Errorf("failed to encode deductions for sale item %s: %w", item.ID, err)
	}
	m.ID = item.ID
	m.SaleID = item.SaleID
	m.ProductID = item.ProductID
	m.ProductName = item.ProductName
	m.Quantity = item.Quantity
	m.UnitPrice = item.UnitPrice
	m.LineTotal = item.LineTotal
	m.DeductionsJSON = string(data)
	m.CreatedAt = item.CreatedAt
	return nil
}

// SalesReturnModel is the persistence model for the SalesReturn aggregate root.
type SalesReturnModel struct {
	BaseModel
	SaleID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	ReceiptCode string            `gorm:"type:varchar(50);not null;index"`
	OperatorID  string            `gorm:"type:varchar(100);not null"`
	TotalRefund decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	Items       []ReturnItemModel `gorm:"foreignKey:ReturnID;references:ID"`
}

// TableName returns the table name for GORM
func (SalesReturnModel) TableName() string {
	return "sales_returns"
}

// ToDomain converts the persistence model to a domain SalesReturn entity.
func (m *SalesReturnModel) ToDomain() *trade.SalesReturn {
	ret := &trade.SalesReturn{
		BaseEntity:  m.BaseModel.ToDomain(),
		SaleID:      m.SaleID,
		ReceiptCode: m.ReceiptCode,
		OperatorID:  m.OperatorID,
		TotalRefund: m.TotalRefund,
		Items:       make([]trade.ReturnItem, len(m.Items)),
	}
	for i := range m.Items {
		ret.Items[i] = *m.Items[i].ToDomain()
	}
	return ret
}

// FromDomain populates the persistence model from a domain SalesReturn entity.
func (m *SalesReturnModel) FromDomain(r *trade.SalesReturn) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.SaleID = r.SaleID
	m.ReceiptCode = r.ReceiptCode
	m.OperatorID = r.OperatorID
	m.TotalRefund = r.TotalRefund
	m.Items = make([]ReturnItemModel, len(r.Items))
	for i := range r.Items {
		m.Items[i].FromDomain(&r.Items[i])
	}
}

// SalesReturnModelFromDomain creates a new persistence model from a domain SalesReturn entity.
func SalesReturnModelFromDomain(r *trade.SalesReturn) *SalesReturnModel {
	m := &SalesReturnModel{}
	m.FromDomain(r)
	return m
}

// ReturnItemModel is the persistence model for one returned line.
type ReturnItemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReturnID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	SaleItemID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RefundAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason       string          `gorm:"type:varchar(500)"`
	CreatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReturnItemModel) TableName() string {
	return "return_items"
}

// ToDomain converts the persistence model to a domain ReturnItem.
func (m *ReturnItemModel) ToDomain() *trade.ReturnItem {
	return &trade.ReturnItem{
		ID:           m.ID,
		ReturnID:     m.ReturnID,
		SaleItemID:   m.SaleItemID,
		ProductID:    m.ProductID,
		Quantity:     m.Quantity,
		UnitPrice:    m.UnitPrice,
		RefundAmount: m.RefundAmount,
		Reason:       m.Reason,
		CreatedAt:    m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain ReturnItem.
func (m *ReturnItemModel) FromDomain(item *trade.ReturnItem) {
	m.ID = item.ID
	m.ReturnID = item.ReturnID
	m.SaleItemID = item.SaleItemID
	m.ProductID = item.ProductID
	m.Quantity = item.Quantity
	m.UnitPrice = item.UnitPrice
	m.RefundAmount = item.RefundAmount
	m.Reason = item.Reason
	m.CreatedAt = item.CreatedAt
}

// ReceiptSequenceModel is the row-locked counter behind receipt numbering.
// One row per prefix; Next() increments it under FOR UPDATE so two
// concurrent sales can never observe the same value.
type ReceiptSequenceModel struct {
	Prefix    string    `gorm:"type:varchar(20);primary_key"`
	Value     int64     `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReceiptSequenceModel) TableName() string {
	return "receipt_sequences"
}
