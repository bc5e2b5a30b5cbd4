package strategy

import "github.com/shopspring/decimal"

// CostMethod represents the cost attribution method for sold items
type CostMethod string

const (
	CostMethodFirstBatch      CostMethod = "first_batch"
	CostMethodWeightedAverage CostMethod = "weighted_average"
)

// String returns the string representation of the cost method
func (m CostMethod) String() string {
	return string(m)
}

// CostComponent is one batch's contribution to a sold line, in deduction order
type CostComponent struct {
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// CostAttributionStrategy decides which cost price represents a sold line
// whose deduction plan may span batches with different cost prices.
type CostAttributionStrategy interface {
	Strategy
	// Method returns the cost attribution method used by this strategy
	Method() CostMethod
	// UnitCost returns the attributed per-unit cost for the given components.
	// Components are in deduction (FEFO) order. Returns zero when empty.
	UnitCost(components []CostComponent) decimal.Decimal
}
