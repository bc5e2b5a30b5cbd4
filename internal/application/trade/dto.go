package trade

import (
	"time"

	"github.com/pharmapos/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// CartLine is one line of a sale request
type CartLine struct {
	ProductID string          `json:"product_id" binding:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

// FinalizeSaleRequest carries a complete cart to commit
type FinalizeSaleRequest struct {
	Lines         []CartLine `json:"lines" binding:"required,min=1,dive"`
	PaymentMethod string     `json:"payment_method" binding:"required,payment_method"`
	OperatorID    string     `json:"-"`
}

// ReturnLine is one line of a return request
type ReturnLine struct {
	SaleItemID string          `json:"sale_item_id" binding:"required,uuid"`
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
	Reason     string          `json:"reason"`
}

// ProcessReturnRequest carries a return against a prior sale
type ProcessReturnRequest struct {
	Lines      []ReturnLine `json:"lines" binding:"required,min=1,dive"`
	OperatorID string       `json:"-"`
}

// BatchDeductionResponse is the audit view of one batch drawdown
type BatchDeductionResponse struct {
	BatchID     string          `json:"batch_id"`
	BatchNumber string          `json:"batch_number"`
	Quantity    decimal.Decimal `json:"quantity"`
	ExpiryDate  time.Time       `json:"expiry_date"`
}

// SaleItemResponse is one committed sale line
type SaleItemResponse struct {
	ID          string                   `json:"id"`
	ProductID   string                   `json:"product_id"`
	ProductName string                   `json:"product_name"`
	Quantity    decimal.Decimal          `json:"quantity"`
	UnitPrice   decimal.Decimal          `json:"unit_price"`
	LineTotal   decimal.Decimal          `json:"line_total"`
	Deductions  []BatchDeductionResponse `json:"deductions"`
}

// SaleResponse is a committed sale
type SaleResponse struct {
	ID            string             `json:"id"`
	ReceiptCode   string             `json:"receipt_code"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	PaymentMethod string             `json:"payment_method"`
	OperatorID    string             `json:"operator_id"`
	CreatedAt     time.Time          `json:"created_at"`
	Items         []SaleItemResponse `json:"items"`
}

// ReturnItemResponse is one committed return line
type ReturnItemResponse struct {
	ID           string          `json:"id"`
	SaleItemID   string          `json:"sale_item_id"`
	ProductID    string          `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	Reason       string          `json:"reason,omitempty"`
}

// ReturnResponse is a committed sales return
type ReturnResponse struct {
	ID          string               `json:"id"`
	SaleID      string               `json:"sale_id"`
	ReceiptCode string               `json:"receipt_code"`
	OperatorID  string               `json:"operator_id"`
	TotalRefund decimal.Decimal      `json:"total_refund"`
	CreatedAt   time.Time            `json:"created_at"`
	Items       []ReturnItemResponse `json:"items"`
}

// ToSaleResponse maps a domain sale to its response
func ToSaleResponse(sale *trade.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(sale.Items))
	for i := range sale.Items {
		item := &sale.Items[i]
		deductions := make([]BatchDeductionResponse, len(item.Deductions))
		for j, d := range item.Deductions {
			deductions[j] = BatchDeductionResponse{
				BatchID:     d.BatchID.String(),
				BatchNumber: d.BatchNumber,
				Quantity:    d.Quantity,
				ExpiryDate:  d.ExpiryDate,
			}
		}
		items[i] = SaleItemResponse{
			ID:          item.ID.String(),
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
			Deductions:  deductions,
		}
	}
	return SaleResponse{
		ID:            sale.ID.String(),
		ReceiptCode:   sale.ReceiptCode,
		TotalAmount:   sale.TotalAmount,
		PaymentMethod: string(sale.PaymentMethod),
		OperatorID:    sale.OperatorID,
		CreatedAt:     sale.CreatedAt,
		Items:         items,
	}
}

// ToReturnResponse maps a domain return to its response
func ToReturnResponse(ret *trade.SalesReturn) ReturnResponse {
	items := make([]ReturnItemResponse, len(ret.Items))
	for i := range ret.Items {
		item := &ret.Items[i]
		items[i] = ReturnItemResponse{
			ID:           item.ID.String(),
			SaleItemID:   item.SaleItemID.String(),
			ProductID:    item.ProductID.String(),
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			RefundAmount: item.RefundAmount,
			Reason:       item.Reason,
		}
	}
	return ReturnResponse{
		ID:          ret.ID.String(),
		SaleID:      ret.SaleID.String(),
		ReceiptCode: ret.ReceiptCode,
		OperatorID:  ret.OperatorID,
		TotalRefund: ret.TotalRefund,
		CreatedAt:   ret.CreatedAt,
		Items:       items,
	}
}
