package cost

import (
	"github.com/pharmapos/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// FirstBatchCostStrategy attributes the whole line to the cost price of the
// first deducted batch. With FEFO deduction order that is the earliest-expiry
// batch the line drew from.
type FirstBatchCostStrategy struct {
	strategy.BaseStrategy
}

// NewFirstBatchCostStrategy creates a new first-batch cost strategy
func NewFirstBatchCostStrategy() *FirstBatchCostStrategy {
	return &FirstBatchCostStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"first_batch",
			strategy.StrategyTypeCost,
			"Attributes line cost to the first deducted batch",
		),
	}
}

// Method returns the costing method
func (s *FirstBatchCostStrategy) Method() strategy.CostMethod {
	return strategy.CostMethodFirstBatch
}

// UnitCost returns the cost price of the first component, or zero when the
// line has no components.
func (s *FirstBatchCostStrategy) UnitCost(components []strategy.CostComponent) decimal.Decimal {
	if len(components) == 0 {
		return decimal.Zero
	}
	return components[0].UnitCost
}
