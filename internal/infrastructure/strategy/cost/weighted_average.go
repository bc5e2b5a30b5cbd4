package cost

import (
	"github.com/pharmapos/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// WeightedAverageCostStrategy attributes a quantity-weighted average of the
// deducted batches' cost prices to the sold line.
type WeightedAverageCostStrategy struct {
	strategy.BaseStrategy
}

// NewWeightedAverageCostStrategy creates a new weighted average cost strategy
func NewWeightedAverageCostStrategy() *WeightedAverageCostStrategy {
	return &WeightedAverageCostStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"weighted_average",
			strategy.StrategyTypeCost,
			"Quantity-weighted average cost across deducted batches",
		),
	}
}

// Method returns the costing method
func (s *WeightedAverageCostStrategy) Method() strategy.CostMethod {
	return strategy.CostMethodWeightedAverage
}

// UnitCost returns the quantity-weighted average cost of the components,
// or zero when the line has no components or no quantity.
func (s *WeightedAverageCostStrategy) UnitCost(components []strategy.CostComponent) decimal.Decimal {
	totalQty := decimal.Zero
	totalCost := decimal.Zero
	for _, c := range components {
		totalQty = totalQty.Add(c.Quantity)
		totalCost = totalCost.Add(c.Quantity.Mul(c.UnitCost))
	}
	if totalQty.IsZero() {
		return decimal.Zero
	}
	return totalCost.Div(totalQty)
}
