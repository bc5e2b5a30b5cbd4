package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReturnConfig holds return engine settings
type ReturnConfig struct {
	// Window is the period after a sale during which returns are accepted
	Window time.Duration
	// RestockPolicy controls the disposition of returned stock
	RestockPolicy trade.RestockPolicy
}

// DefaultReturnConfig returns the default return engine settings
func DefaultReturnConfig() ReturnConfig {
	return ReturnConfig{
		Window:        trade.DefaultReturnWindow,
		RestockPolicy: trade.RestockPolicyNone,
	}
}

// ReturnService is the return engine: it enforces the return window and
// per-line remaining quantities, and commits return records atomically.
type ReturnService struct {
	scope  TransactionScope
	cache  CacheInvalidator
	clock  shared.Clock
	cfg    ReturnConfig
	logger *zap.Logger
}

// NewReturnService creates a new ReturnService. cache may be nil.
func NewReturnService(scope TransactionScope, cache CacheInvalidator, clock shared.Clock, cfg ReturnConfig, logger *zap.Logger) *ReturnService {
	if cfg.Window <= 0 {
		cfg.Window = trade.DefaultReturnWindow
	}
	if !cfg.RestockPolicy.IsValid() {
		cfg.RestockPolicy = trade.RestockPolicyNone
	}
	return &ReturnService{
		scope:  scope,
		cache:  cache,
		clock:  clock,
		cfg:    cfg,
		logger: logger,
	}
}

// ProcessReturn commits a return against a prior sale. Every line is
// validated against its remaining returnable quantity before anything is
// persisted; one bad line rejects the whole return.
func (s *ReturnService) ProcessReturn(ctx context.Context, saleID uuid.UUID, req ProcessReturnRequest) (*ReturnResponse, error) {
	if len(req.Lines) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Return must contain at least one line")
	}
	if req.OperatorID == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Operator ID is required")
	}

	now := s.clock.Now()
	var (
		ret       *trade.SalesReturn
		restocked []uuid.UUID
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		// The row lock serializes concurrent returns against the same
		// sale: two tills both reading the committed returned quantity
		// could otherwise push the sum past the sold quantity.
		sale, err := repos.SaleRepo().FindByIDForUpdate(ctx, saleID)
		if err != nil {
			return err
		}

		if !sale.WithinReturnWindow(now, s.cfg.Window) {
			return shared.ErrReturnWindowExpired.WithDetails(map[string]any{
				"sale_id":      sale.ID.String(),
				"sold_at":      sale.CreatedAt,
				"window_hours": s.cfg.Window.Hours(),
			})
		}

		ret, err = trade.NewSalesReturn(sale.ID, sale.ReceiptCode, req.OperatorID, now)
		if err != nil {
			return err
		}

		// Validate and stage all lines before committing any
		type stagedLine struct {
			item            *trade.SaleItem
			alreadyReturned decimal.Decimal
			quantity        decimal.Decimal
		}
		staged := make([]stagedLine, 0, len(req.Lines))
		// Earlier lines of this request naming the same sale item count
		// against remaining too, so a duplicate-line request cannot
		// exceed the sold quantity in aggregate.
		requestedSoFar := make(map[uuid.UUID]decimal.Decimal)
		for _, line := range req.Lines {
			itemID, err := uuid.Parse(line.SaleItemID)
			if err != nil {
				return shared.NewDomainError("VALIDATION_ERROR", "Invalid sale item ID")
			}
			item, ok := sale.FindItem(itemID)
			if !ok {
				return shared.ErrNotFound.WithDetails(map[string]any{
					"sale_item_id": line.SaleItemID,
					"sale_id":      sale.ID.String(),
				})
			}
			committed, err := repos.ReturnRepo().ReturnedQuantity(ctx, itemID)
			if err != nil {
				return err
			}
			alreadyReturned := committed.Add(requestedSoFar[itemID])
			remaining := item.Quantity.Sub(alreadyReturned)
			if _, err := ret.AddItem(item, line.Quantity, remaining, line.Reason); err != nil {
				return err
			}
			requestedSoFar[itemID] = requestedSoFar[itemID].Add(line.Quantity)
			staged = append(staged, stagedLine{item: item, alreadyReturned: alreadyReturned, quantity: line.Quantity})
		}

		if err := repos.ReturnRepo().Save(ctx, ret); err != nil {
			return err
		}

		if s.cfg.RestockPolicy == trade.RestockPolicyOriginalBatch {
			for _, sl := range staged {
				if err := s.restockOriginalBatches(ctx, repos, sl.item, sl.alreadyReturned, sl.quantity); err != nil {
					return err
				}
				restocked = append(restocked, sl.item.ProductID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(restocked) > 0 {
		if err := s.cache.Invalidate(ctx, restocked...); err != nil {
			s.logger.Warn("availability cache invalidation failed", zap.Error(err))
		}
	}

	s.logger.Info("return committed",
		zap.String("return_id", ret.ID.String()),
		zap.String("sale_id", saleID.String()),
		zap.String("total_refund", ret.TotalRefund.String()),
		zap.Int("lines", len(ret.Items)),
		zap.String("restock_policy", string(s.cfg.RestockPolicy)),
	)
	response := ToReturnResponse(ret)
	return &response, nil
}

// ListBySale retrieves all returns recorded against a sale
func (s *ReturnService) ListBySale(ctx context.Context, saleID uuid.UUID) ([]ReturnResponse, error) {
	var returns []trade.SalesReturn
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		returns, err = repos.ReturnRepo().FindBySale(ctx, saleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	responses := make([]ReturnResponse, len(returns))
	for i := range returns {
		responses[i] = ToReturnResponse(&returns[i])
	}
	return responses, nil
}

// restockOriginalBatches credits a returned quantity back to the batches
// the sale line was drawn from, in deduction order. Capacity consumed by
// earlier returns of the same line is replayed first, so a batch is never
// credited beyond what this line took from it.
func (s *ReturnService) restockOriginalBatches(
	ctx context.Context,
	repos TransactionalRepositories,
	item *trade.SaleItem,
	alreadyReturned, quantity decimal.Decimal,
) error {
	skip := alreadyReturned
	left := quantity
	for _, d := range item.Deductions {
		if !left.IsPositive() {
			break
		}
		capacity := d.Quantity
		if skip.IsPositive() {
			consumed := decimal.Min(skip, capacity)
			capacity = capacity.Sub(consumed)
			skip = skip.Sub(consumed)
		}
		if !capacity.IsPositive() {
			continue
		}
		credit := decimal.Min(left, capacity)
		if err := repos.BatchRepo().Restock(ctx, d.BatchID, credit); err != nil {
			return err
		}
		left = left.Sub(credit)
	}
	return nil
}
