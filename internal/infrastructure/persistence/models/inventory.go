package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// StockBatchModel is the persistence model for the StockBatch entity.
// Quantity is only ever mutated through conditional UPDATE statements so
// concurrent deductions cannot overdraw a batch.
type StockBatchModel struct {
	BaseModel
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_batches_product_expiry,priority:1"`
	BatchNumber  string          `gorm:"type:varchar(50);not null;index"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ExpiryDate   time.Time       `gorm:"type:date;not null;index:idx_stock_batches_product_expiry,priority:2"`
	PurchaseDate time.Time       `gorm:"type:date;not null"`
	Supplier     string          `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (StockBatchModel) TableName() string {
	return "stock_batches"
}

// ToDomain converts the persistence model to a domain StockBatch entity.
func (m *StockBatchModel) ToDomain() *inventory.StockBatch {
	return &inventory.StockBatch{
		BaseEntity:   m.BaseModel.ToDomain(),
		ProductID:    m.ProductID,
		BatchNumber:  m.BatchNumber,
		Quantity:     m.Quantity,
		CostPrice:    m.CostPrice,
		SellingPrice: m.SellingPrice,
		ExpiryDate:   m.ExpiryDate,
		PurchaseDate: m.PurchaseDate,
		Supplier:     m.Supplier,
	}
}

// FromDomain populates the persistence model from a domain StockBatch entity.
func (m *StockBatchModel) FromDomain(b *inventory.StockBatch) {
	m.FromDomainBaseEntity(b.BaseEntity)
	m.ProductID = b.ProductID
	m.BatchNumber = b.BatchNumber
	m.Quantity = b.Quantity
	m.CostPrice = b.CostPrice
	m.SellingPrice = b.SellingPrice
	m.ExpiryDate = b.ExpiryDate
	m.PurchaseDate = b.PurchaseDate
	m.Supplier = b.Supplier
}

// StockBatchModelFromDomain creates a new persistence model from a domain StockBatch entity.
func StockBatchModelFromDomain(b *inventory.StockBatch) *StockBatchModel {
	m := &StockBatchModel{}
	m.FromDomain(b)
	return m
}
