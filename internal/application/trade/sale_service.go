package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/catalog"
	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SaleConfig holds sale engine settings
type SaleConfig struct {
	// ReceiptPrefix is the prefix shared by all receipt codes
	ReceiptPrefix string
	// SequencePad is the zero-padded width of the sequence number
	SequencePad int
}

// DefaultSaleConfig returns the default sale engine settings
func DefaultSaleConfig() SaleConfig {
	return SaleConfig{
		ReceiptPrefix: "RCP",
		SequencePad:   6,
	}
}

// CacheInvalidator drops availability read-model entries after a commit
type CacheInvalidator interface {
	Invalidate(ctx context.Context, productIDs ...uuid.UUID) error
}

// SaleService is the sale engine: it validates carts, allocates stock in
// FEFO order, assigns receipt codes and commits sale plus deductions as
// one unit of work.
type SaleService struct {
	scope       TransactionScope
	productRepo catalog.ProductRepository
	cache       CacheInvalidator
	clock       shared.Clock
	cfg         SaleConfig
	logger      *zap.Logger
}

// NewSaleService creates a new SaleService. cache may be nil.
func NewSaleService(
	scope TransactionScope,
	productRepo catalog.ProductRepository,
	cache CacheInvalidator,
	clock shared.Clock,
	cfg SaleConfig,
	logger *zap.Logger,
) *SaleService {
	if cfg.ReceiptPrefix == "" {
		cfg = DefaultSaleConfig()
	}
	if cfg.SequencePad <= 0 {
		cfg.SequencePad = 6
	}
	return &SaleService{
		scope:       scope,
		productRepo: productRepo,
		cache:       cache,
		clock:       clock,
		cfg:         cfg,
		logger:      logger,
	}
}

type validatedLine struct {
	product *catalog.Product
	line    CartLine
	id      uuid.UUID
}

// FinalizeSale commits a multi-line cart. Either the whole sale lands,
// with every batch deduction applied, or nothing does. A deduction race
// detected mid-commit is retried once against a fresh snapshot.
func (s *SaleService) FinalizeSale(ctx context.Context, req FinalizeSaleRequest) (*SaleResponse, error) {
	lines, err := s.validate(ctx, req)
	if err != nil {
		return nil, err
	}
	paymentMethod := trade.PaymentMethod(req.PaymentMethod)

	sale, err := s.attempt(ctx, lines, paymentMethod, req.OperatorID)
	if errors.Is(err, shared.ErrConcurrencyConflict) {
		s.logger.Warn("sale hit allocation race, retrying with fresh snapshot",
			zap.String("operator_id", req.OperatorID))
		sale, err = s.attempt(ctx, lines, paymentMethod, req.OperatorID)
	}
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, lines)

	s.logger.Info("sale committed",
		zap.String("sale_id", sale.ID.String()),
		zap.String("receipt_code", sale.ReceiptCode),
		zap.String("total", sale.TotalAmount.String()),
		zap.Int("lines", len(sale.Items)),
		zap.String("operator_id", sale.OperatorID),
	)
	response := ToSaleResponse(sale)
	return &response, nil
}

// GetByID retrieves a committed sale
func (s *SaleService) GetByID(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	var sale *trade.Sale
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sale, err = repos.SaleRepo().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// GetByReceiptCode retrieves a committed sale by its receipt code
func (s *SaleService) GetByReceiptCode(ctx context.Context, receiptCode string) (*SaleResponse, error) {
	var sale *trade.Sale
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sale, err = repos.SaleRepo().FindByReceiptCode(ctx, receiptCode)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// List retrieves committed sales with filtering and pagination
func (s *SaleService) List(ctx context.Context, filter shared.Filter) ([]SaleResponse, int64, error) {
	var (
		sales []trade.Sale
		total int64
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		if sales, err = repos.SaleRepo().FindAll(ctx, filter); err != nil {
			return err
		}
		total, err = repos.SaleRepo().Count(ctx, filter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	responses := make([]SaleResponse, len(sales))
	for i := range sales {
		responses[i] = ToSaleResponse(&sales[i])
	}
	return responses, total, nil
}

// validate rejects bad carts before any allocation work: empty carts,
// non-positive quantities or prices, unknown or inactive products.
func (s *SaleService) validate(ctx context.Context, req FinalizeSaleRequest) ([]validatedLine, error) {
	if len(req.Lines) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Cart cannot be empty")
	}
	if !trade.PaymentMethod(req.PaymentMethod).IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unknown payment method")
	}
	if req.OperatorID == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Operator ID is required")
	}

	lines := make([]validatedLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Invalid product ID")
		}
		if !line.Quantity.IsPositive() {
			return nil, shared.ErrValidation.WithDetails(map[string]any{
				"product_id": line.ProductID,
				"reason":     "quantity must be positive",
			})
		}
		if !line.UnitPrice.IsPositive() {
			return nil, shared.ErrValidation.WithDetails(map[string]any{
				"product_id": line.ProductID,
				"reason":     "unit price must be positive",
			})
		}
		product, err := s.productRepo.FindByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if !product.Active {
			return nil, shared.ErrValidation.WithDetails(map[string]any{
				"product_id": line.ProductID,
				"reason":     "product is inactive",
			})
		}
		lines = append(lines, validatedLine{product: product, line: line, id: productID})
	}
	return lines, nil
}

// attempt runs one allocation+commit cycle as a single unit of work
func (s *SaleService) attempt(ctx context.Context, lines []validatedLine, paymentMethod trade.PaymentMethod, operatorID string) (*trade.Sale, error) {
	today := s.clock.Today()
	var sale *trade.Sale

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		// Allocate every line against a consistent snapshot before
		// touching anything. One failed line aborts the whole sale.
		// Earlier lines' planned deductions are subtracted from later
		// snapshots so a cart listing the same product twice competes
		// with itself instead of double-counting the stock.
		plans := make([]inventory.DeductionPlan, 0, len(lines))
		planned := make(map[uuid.UUID]decimal.Decimal)
		for _, vl := range lines {
			snapshot, err := repos.BatchRepo().FindAvailable(ctx, vl.id, today)
			if err != nil {
				return err
			}
			if len(planned) > 0 {
				adjusted := make([]inventory.StockBatch, len(snapshot))
				copy(adjusted, snapshot)
				for i := range adjusted {
					if taken, ok := planned[adjusted[i].ID]; ok {
						adjusted[i].Quantity = adjusted[i].Quantity.Sub(taken)
					}
				}
				snapshot = adjusted
			}
			plan, err := inventory.Allocate(vl.id, vl.line.Quantity, snapshot, today)
			if err != nil {
				return err
			}
			for _, d := range plan.Deductions {
				planned[d.BatchID] = planned[d.BatchID].Add(d.Quantity)
			}
			plans = append(plans, plan)
		}

		seq, err := repos.ReceiptRepo().Next(ctx, s.cfg.ReceiptPrefix)
		if err != nil {
			return err
		}
		receiptCode := fmt.Sprintf("%s-%0*d", s.cfg.ReceiptPrefix, s.cfg.SequencePad, seq)

		sale, err = trade.NewSale(receiptCode, paymentMethod, operatorID, s.clock.Now())
		if err != nil {
			return err
		}
		for i, vl := range lines {
			deductions := make([]trade.BatchDeduction, len(plans[i].Deductions))
			for j, d := range plans[i].Deductions {
				deductions[j] = trade.BatchDeduction{
					SchemaVersion: trade.BatchDeductionSchemaVersion,
					BatchID:       d.BatchID,
					BatchNumber:   d.BatchNumber,
					Quantity:      d.Quantity,
					ExpiryDate:    d.ExpiryDate,
					UnitCost:      d.UnitCost,
				}
			}
			if _, err := sale.AddItem(vl.id, vl.product.Name, vl.line.Quantity, vl.line.UnitPrice, deductions); err != nil {
				return err
			}
		}

		if err := repos.SaleRepo().Save(ctx, sale); err != nil {
			return err
		}

		// Conditional decrements: any batch drained since the snapshot
		// surfaces as a conflict and rolls the whole sale back.
		for _, plan := range plans {
			for _, d := range plan.Deductions {
				if err := repos.BatchRepo().ApplyDeduction(ctx, d.BatchID, d.Quantity); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *SaleService) invalidate(ctx context.Context, lines []validatedLine) {
	if s.cache == nil {
		return
	}
	ids := make([]uuid.UUID, len(lines))
	for i, vl := range lines {
		ids[i] = vl.id
	}
	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		s.logger.Warn("availability cache invalidation failed", zap.Error(err))
	}
}
