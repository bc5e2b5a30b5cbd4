package report

import (
	"context"
	"time"

	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/domain/shared/strategy"
	"github.com/pharmapos/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReportService produces read-only derived views over sale history. Cost
// attribution for sold lines is delegated to a named strategy so the
// first-batch approximation can be swapped for a weighted average without
// touching call sites.
type ReportService struct {
	saleRepo trade.SaleRepository
	cost     strategy.CostAttributionStrategy
	clock    shared.Clock
	logger   *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(saleRepo trade.SaleRepository, cost strategy.CostAttributionStrategy, clock shared.Clock, logger *zap.Logger) *ReportService {
	return &ReportService{
		saleRepo: saleRepo,
		cost:     cost,
		clock:    clock,
		logger:   logger,
	}
}

// ItemProfitResponse is the profit view of one sold line
type ItemProfitResponse struct {
	SaleItemID  string          `json:"sale_item_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Profit      decimal.Decimal `json:"profit"`
	CostMethod  string          `json:"cost_method"`
}

// ProfitSummaryResponse aggregates profit over a date range
type ProfitSummaryResponse struct {
	From        time.Time            `json:"from"`
	To          time.Time            `json:"to"`
	Revenue     decimal.Decimal      `json:"revenue"`
	Cost        decimal.Decimal      `json:"cost"`
	Profit      decimal.Decimal      `json:"profit"`
	SaleCount   int                  `json:"sale_count"`
	CostMethod  string               `json:"cost_method"`
	ItemProfits []ItemProfitResponse `json:"item_profits,omitempty"`
}

// ItemProfit computes the profit of one sold line using the configured
// cost attribution strategy over the line's deduction plan.
func (s *ReportService) ItemProfit(item *trade.SaleItem) ItemProfitResponse {
	unitCost := s.cost.UnitCost(toCostComponents(item.Deductions))
	profit := item.UnitPrice.Sub(unitCost).Mul(item.Quantity)
	return ItemProfitResponse{
		SaleItemID:  item.ID.String(),
		ProductID:   item.ProductID.String(),
		ProductName: item.ProductName,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		UnitCost:    unitCost,
		Profit:      profit,
		CostMethod:  s.cost.Method().String(),
	}
}

// ProfitSummary aggregates revenue, cost and profit over all sales
// committed in [from, to].
func (s *ReportService) ProfitSummary(ctx context.Context, from, to time.Time, includeItems bool) (*ProfitSummaryResponse, error) {
	sales, err := s.saleRepo.FindBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	summary := &ProfitSummaryResponse{
		From:       from,
		To:         to,
		Revenue:    decimal.Zero,
		Cost:       decimal.Zero,
		Profit:     decimal.Zero,
		SaleCount:  len(sales),
		CostMethod: s.cost.Method().String(),
	}
	for i := range sales {
		for j := range sales[i].Items {
			item := &sales[i].Items[j]
			ip := s.ItemProfit(item)
			summary.Revenue = summary.Revenue.Add(item.LineTotal)
			summary.Cost = summary.Cost.Add(ip.UnitCost.Mul(item.Quantity))
			summary.Profit = summary.Profit.Add(ip.Profit)
			if includeItems {
				summary.ItemProfits = append(summary.ItemProfits, ip)
			}
		}
	}
	return summary, nil
}

// DailySummary is the profit summary for the current trading day
func (s *ReportService) DailySummary(ctx context.Context, includeItems bool) (*ProfitSummaryResponse, error) {
	from := s.clock.Today()
	to := from.Add(24*time.Hour - time.Nanosecond)
	summary, err := s.ProfitSummary(ctx, from, to, includeItems)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("daily summary computed",
		zap.Time("from", from),
		zap.Int("sale_count", summary.SaleCount))
	return summary, nil
}

func toCostComponents(deductions []trade.BatchDeduction) []strategy.CostComponent {
	components := make([]strategy.CostComponent, len(deductions))
	for i, d := range deductions {
		components[i] = strategy.CostComponent{
			Quantity: d.Quantity,
			UnitCost: d.UnitCost,
		}
	}
	return components
}
