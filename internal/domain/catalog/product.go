package catalog

import (
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product represents a sellable pharmacy product. Products are never hard
// deleted; they are deactivated so historical sales stay valid.
type Product struct {
	shared.BaseEntity
	Name         string
	Category     string
	Strength     string // e.g. "500mg"
	DosageForm   string // e.g. "tablet", "syrup"
	Formula      string // optional generic/chemical name
	Manufacturer string // optional
	ShelfID      string // opaque reference to a shelf location
	MinStock     decimal.Decimal
	Active       bool
}

// NewProduct creates a new active product
func NewProduct(name, category, strength, dosageForm string) (*Product, error) {
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product name cannot be empty")
	}
	if category == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product category cannot be empty")
	}
	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Category:   category,
		Strength:   strength,
		DosageForm: dosageForm,
		MinStock:   decimal.Zero,
		Active:     true,
	}, nil
}

// UpdateDetails updates the mutable display attributes
func (p *Product) UpdateDetails(name, category, strength, dosageForm, formula, manufacturer string) error {
	if name == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Product name cannot be empty")
	}
	if category == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Product category cannot be empty")
	}
	p.Name = name
	p.Category = category
	p.Strength = strength
	p.DosageForm = dosageForm
	p.Formula = formula
	p.Manufacturer = manufacturer
	p.Touch()
	return nil
}

// SetShelf assigns the shelf location reference
func (p *Product) SetShelf(shelfID string) {
	p.ShelfID = shelfID
	p.Touch()
}

// SetMinStock sets the minimum stock threshold used for low-stock alerts
func (p *Product) SetMinStock(minStock decimal.Decimal) error {
	if minStock.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Minimum stock cannot be negative")
	}
	p.MinStock = minStock
	p.Touch()
	return nil
}

// Deactivate soft-disables the product so it can no longer be sold
func (p *Product) Deactivate() {
	p.Active = false
	p.Touch()
}

// Activate re-enables a previously deactivated product
func (p *Product) Activate() {
	p.Active = true
	p.Touch()
}
