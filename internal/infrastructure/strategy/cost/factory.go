package cost

import (
	"fmt"

	"github.com/pharmapos/backend/internal/domain/shared/strategy"
)

// NewCostStrategy returns the cost attribution strategy for the given method.
func NewCostStrategy(method strategy.CostMethod) (strategy.CostAttributionStrategy, error) {
	switch method {
	case strategy.CostMethodFirstBatch:
		return NewFirstBatchCostStrategy(), nil
	case strategy.CostMethodWeightedAverage:
		return NewWeightedAverageCostStrategy(), nil
	default:
		return nil, fmt.Errorf("unknown cost method: %s", method)
	}
}
