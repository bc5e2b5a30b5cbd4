package inventory

import (
	"time"

	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// StockPurchaseRequest records a purchase creating a new batch
type StockPurchaseRequest struct {
	ProductID    string          `json:"product_id" binding:"required,uuid"`
	BatchNumber  string          `json:"batch_number" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	CostPrice    decimal.Decimal `json:"cost_price" binding:"required"`
	SellingPrice decimal.Decimal `json:"selling_price" binding:"required"`
	ExpiryDate   time.Time       `json:"expiry_date" binding:"required"`
	PurchaseDate time.Time       `json:"purchase_date"`
	Supplier     string          `json:"supplier"`
}

// StockCorrectionRequest adjusts a batch quantity manually
type StockCorrectionRequest struct {
	BatchID string          `json:"batch_id" binding:"required,uuid"`
	Delta   decimal.Decimal `json:"delta" binding:"required"`
	Reason  string          `json:"reason" binding:"required"`
}

// BatchResponse is the outward representation of a stock batch
type BatchResponse struct {
	ID           string                 `json:"id"`
	ProductID    string                 `json:"product_id"`
	BatchNumber  string                 `json:"batch_number"`
	Quantity     decimal.Decimal        `json:"quantity"`
	CostPrice    decimal.Decimal        `json:"cost_price"`
	SellingPrice decimal.Decimal        `json:"selling_price"`
	ExpiryDate   time.Time              `json:"expiry_date"`
	PurchaseDate time.Time              `json:"purchase_date"`
	Supplier     string                 `json:"supplier,omitempty"`
	ExpiryStatus inventory.ExpiryStatus `json:"expiry_status"`
}

// AvailabilityResponse reports sellable quantity for a product
type AvailabilityResponse struct {
	ProductID string          `json:"product_id"`
	Available decimal.Decimal `json:"available"`
}

// ExpiryAlertResponse groups batches needing attention
type ExpiryAlertResponse struct {
	ExpiringSoon []BatchResponse `json:"expiring_soon"`
	Expired      []BatchResponse `json:"expired"`
	HorizonDays  int             `json:"horizon_days"`
}

// ToBatchResponse maps a batch to its response with expiry classification
func ToBatchResponse(b *inventory.StockBatch, today time.Time, horizonDays int) BatchResponse {
	return BatchResponse{
		ID:           b.ID.String(),
		ProductID:    b.ProductID.String(),
		BatchNumber:  b.BatchNumber,
		Quantity:     b.Quantity,
		CostPrice:    b.CostPrice,
		SellingPrice: b.SellingPrice,
		ExpiryDate:   b.ExpiryDate,
		PurchaseDate: b.PurchaseDate,
		Supplier:     b.Supplier,
		ExpiryStatus: b.Classify(today, horizonDays),
	}
}

// ToBatchResponses maps a slice of batches
func ToBatchResponses(batches []inventory.StockBatch, today time.Time, horizonDays int) []BatchResponse {
	responses := make([]BatchResponse, len(batches))
	for i := range batches {
		responses[i] = ToBatchResponse(&batches[i], today, horizonDays)
	}
	return responses
}
