package models

import (
	"github.com/pharmapos/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product entity.
type ProductModel struct {
	BaseModel
	Name         string          `gorm:"type:varchar(200);not null;index"`
	Category     string          `gorm:"type:varchar(100);not null;index"`
	Strength     string          `gorm:"type:varchar(50)"`
	DosageForm   string          `gorm:"type:varchar(50)"`
	Formula      string          `gorm:"type:varchar(200)"`
	Manufacturer string          `gorm:"type:varchar(200)"`
	ShelfID      string          `gorm:"type:varchar(50)"`
	MinStock     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Active       bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity:   m.BaseModel.ToDomain(),
		Name:         m.Name,
		Category:     m.Category,
		Strength:     m.Strength,
		DosageForm:   m.DosageForm,
		Formula:      m.Formula,
		Manufacturer: m.Manufacturer,
		ShelfID:      m.ShelfID,
		MinStock:     m.MinStock,
		Active:       m.Active,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Name = p.Name
	m.Category = p.Category
	m.Strength = p.Strength
	m.DosageForm = p.DosageForm
	m.Formula = p.Formula
	m.Manufacturer = p.Manufacturer
	m.ShelfID = p.ShelfID
	m.MinStock = p.MinStock
	m.Active = p.Active
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
