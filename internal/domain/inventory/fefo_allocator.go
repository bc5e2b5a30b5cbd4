package inventory

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PlannedDeduction is one (batch, quantity) pair of a deduction plan
type PlannedDeduction struct {
	BatchID     uuid.UUID
	BatchNumber string
	Quantity    decimal.Decimal
	ExpiryDate  time.Time
	UnitCost    decimal.Decimal
}

// DeductionPlan is the ordered set of batch deductions chosen to satisfy
// one requested quantity. Re-running allocation against an unchanged
// snapshot always yields an identical plan.
type DeductionPlan struct {
	ProductID  uuid.UUID
	Requested  decimal.Decimal
	Deductions []PlannedDeduction
}

// TotalQuantity returns the sum of planned deduction quantities
func (p DeductionPlan) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, d := range p.Deductions {
		total = total.Add(d.Quantity)
	}
	return total
}

// SortFEFO orders batches earliest expiry first. Batches sharing an expiry
// date are ordered by purchase date, then batch ID, so allocation is
// deterministic.
func SortFEFO(batches []StockBatch) {
	sort.SliceStable(batches, func(i, j int) bool {
		if !batches[i].ExpiryDate.Equal(batches[j].ExpiryDate) {
			return batches[i].ExpiryDate.Before(batches[j].ExpiryDate)
		}
		if !batches[i].PurchaseDate.Equal(batches[j].PurchaseDate) {
			return batches[i].PurchaseDate.Before(batches[j].PurchaseDate)
		}
		return batches[i].ID.String() < batches[j].ID.String()
	})
}

// AvailableBatches filters the snapshot down to batches that can satisfy a
// sale as of today and returns them in FEFO order.
func AvailableBatches(batches []StockBatch, today time.Time) []StockBatch {
	available := make([]StockBatch, 0, len(batches))
	for _, b := range batches {
		if b.IsAvailable(today) {
			available = append(available, b)
		}
	}
	SortFEFO(available)
	return available
}

// AvailableQuantity sums the remaining quantity of non-expired batches
func AvailableQuantity(batches []StockBatch, today time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, b := range batches {
		if b.IsAvailable(today) {
			total = total.Add(b.Quantity)
		}
	}
	return total
}

// Allocate walks the FEFO-ordered snapshot and produces a minimal ordered
// deduction plan for the requested quantity. Batches contributing zero are
// omitted. When total availability falls short it returns an
// INSUFFICIENT_STOCK error carrying the available quantity; nothing is
// mutated. The walk is associative: splitting one allocation into
// sequential sub-allocations against the same starting state consumes the
// same total per batch.
func Allocate(productID uuid.UUID, requested decimal.Decimal, snapshot []StockBatch, today time.Time) (DeductionPlan, error) {
	if !requested.IsPositive() {
		return DeductionPlan{}, shared.ErrValidation.WithDetails(map[string]any{
			"product_id": productID.String(),
			"requested":  requested.String(),
			"reason":     "requested quantity must be positive",
		})
	}

	available := AvailableBatches(snapshot, today)

	totalAvailable := decimal.Zero
	for _, b := range available {
		totalAvailable = totalAvailable.Add(b.Quantity)
	}
	if totalAvailable.LessThan(requested) {
		return DeductionPlan{}, shared.ErrInsufficientStock.WithDetails(map[string]any{
			"product_id": productID.String(),
			"requested":  requested.String(),
			"available":  totalAvailable.String(),
		})
	}

	plan := DeductionPlan{
		ProductID:  productID,
		Requested:  requested,
		Deductions: make([]PlannedDeduction, 0, len(available)),
	}
	stillNeeded := requested
	for _, b := range available {
		if stillNeeded.IsZero() {
			break
		}
		take := decimal.Min(stillNeeded, b.Quantity)
		plan.Deductions = append(plan.Deductions, PlannedDeduction{
			BatchID:     b.ID,
			BatchNumber: b.BatchNumber,
			Quantity:    take,
			ExpiryDate:  b.ExpiryDate,
			UnitCost:    b.CostPrice,
		})
		stillNeeded = stillNeeded.Sub(take)
	}

	return plan, nil
}
