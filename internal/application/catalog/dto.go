package catalog

import (
	"time"

	"github.com/pharmapos/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateProductRequest carries the fields for creating a product
type CreateProductRequest struct {
	Name         string          `json:"name" binding:"required"`
	Category     string          `json:"category" binding:"required"`
	Strength     string          `json:"strength"`
	DosageForm   string          `json:"dosage_form"`
	Formula      string          `json:"formula"`
	Manufacturer string          `json:"manufacturer"`
	ShelfID      string          `json:"shelf_id"`
	MinStock     decimal.Decimal `json:"min_stock"`
}

// UpdateProductRequest carries the mutable product attributes
type UpdateProductRequest struct {
	Name         string           `json:"name" binding:"required"`
	Category     string           `json:"category" binding:"required"`
	Strength     string           `json:"strength"`
	DosageForm   string           `json:"dosage_form"`
	Formula      string           `json:"formula"`
	Manufacturer string           `json:"manufacturer"`
	ShelfID      *string          `json:"shelf_id"`
	MinStock     *decimal.Decimal `json:"min_stock"`
}

// ProductResponse is the outward representation of a product
type ProductResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Strength     string          `json:"strength,omitempty"`
	DosageForm   string          `json:"dosage_form,omitempty"`
	Formula      string          `json:"formula,omitempty"`
	Manufacturer string          `json:"manufacturer,omitempty"`
	ShelfID      string          `json:"shelf_id,omitempty"`
	MinStock     decimal.Decimal `json:"min_stock"`
	Active       bool            `json:"active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductListFilter carries list query options
type ProductListFilter struct {
	Page       int
	PageSize   int
	OrderBy    string
	OrderDir   string
	Search     string
	Category   string
	ActiveOnly bool
}

// ToProductResponse maps a domain product to its response
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID.String(),
		Name:         p.Name,
		Category:     p.Category,
		Strength:     p.Strength,
		DosageForm:   p.DosageForm,
		Formula:      p.Formula,
		Manufacturer: p.Manufacturer,
		ShelfID:      p.ShelfID,
		MinStock:     p.MinStock,
		Active:       p.Active,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ToProductResponses maps a slice of domain products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}
