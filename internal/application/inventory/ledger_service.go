package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/catalog"
	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerService exposes the batch ledger: availability queries, expiry
// classification, stock purchases and manual corrections. It is the only
// write path into batch quantities outside the sale engine's deductions.
type LedgerService struct {
	batchRepo   inventory.StockBatchRepository
	productRepo catalog.ProductRepository
	cache       AvailabilityCache
	clock       shared.Clock
	horizonDays int
	logger      *zap.Logger
}

// NewLedgerService creates a new LedgerService. cache may be nil, in which
// case every availability query hits the store.
func NewLedgerService(
	batchRepo inventory.StockBatchRepository,
	productRepo catalog.ProductRepository,
	cache AvailabilityCache,
	clock shared.Clock,
	horizonDays int,
	logger *zap.Logger,
) *LedgerService {
	if horizonDays <= 0 {
		horizonDays = inventory.DefaultExpiryHorizonDays
	}
	return &LedgerService{
		batchRepo:   batchRepo,
		productRepo: productRepo,
		cache:       cache,
		clock:       clock,
		horizonDays: horizonDays,
		logger:      logger,
	}
}

// AvailableQuantity returns the sellable quantity for a product: the sum
// over all non-expired batches that still hold stock. Served from the read
// cache when warm.
func (s *LedgerService) AvailableQuantity(ctx context.Context, productID uuid.UUID) (*AvailabilityResponse, error) {
	if s.cache != nil {
		if qty, ok, err := s.cache.Get(ctx, productID); err == nil && ok {
			return &AvailabilityResponse{ProductID: productID.String(), Available: qty}, nil
		} else if err != nil {
			s.logger.Warn("availability cache read failed, falling back to store",
				zap.String("product_id", productID.String()), zap.Error(err))
		}
	}

	qty, err := s.batchRepo.AvailableQuantity(ctx, productID, s.clock.Today())
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, productID, qty); err != nil {
			s.logger.Warn("availability cache write failed",
				zap.String("product_id", productID.String()), zap.Error(err))
		}
	}
	return &AvailabilityResponse{ProductID: productID.String(), Available: qty}, nil
}

// AvailableBatches returns non-expired batches with stock in FEFO order
func (s *LedgerService) AvailableBatches(ctx context.Context, productID uuid.UUID) ([]BatchResponse, error) {
	today := s.clock.Today()
	batches, err := s.batchRepo.FindAvailable(ctx, productID, today)
	if err != nil {
		return nil, err
	}
	return ToBatchResponses(batches, today, s.horizonDays), nil
}

// ListBatches returns all batches for a product, drained ones included
func (s *LedgerService) ListBatches(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]BatchResponse, error) {
	batches, err := s.batchRepo.FindByProduct(ctx, productID, filter)
	if err != nil {
		return nil, err
	}
	today := s.clock.Today()
	return ToBatchResponses(batches, today, s.horizonDays), nil
}

// PurchaseStock records a stock purchase, creating a new batch
func (s *LedgerService) PurchaseStock(ctx context.Context, req StockPurchaseRequest) (*BatchResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invalid product ID")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot purchase stock for an inactive product")
	}

	purchaseDate := req.PurchaseDate
	if purchaseDate.IsZero() {
		purchaseDate = s.clock.Today()
	}

	batch, err := inventory.NewStockBatch(
		productID,
		req.BatchNumber,
		req.Quantity,
		req.CostPrice,
		req.SellingPrice,
		req.ExpiryDate,
		purchaseDate,
		req.Supplier,
	)
	if err != nil {
		return nil, err
	}

	if err := s.batchRepo.Save(ctx, batch); err != nil {
		return nil, err
	}
	s.invalidate(ctx, productID)

	s.logger.Info("stock purchased",
		zap.String("product_id", productID.String()),
		zap.String("batch_number", batch.BatchNumber),
		zap.String("quantity", batch.Quantity.String()),
	)
	today := s.clock.Today()
	resp := ToBatchResponse(batch, today, s.horizonDays)
	return &resp, nil
}

// CorrectStock applies a signed manual quantity correction to a batch.
// Negative corrections go through the same atomic conditional decrement as
// sale deductions, so a batch can never be driven below zero.
func (s *LedgerService) CorrectStock(ctx context.Context, req StockCorrectionRequest) error {
	batchID, err := uuid.Parse(req.BatchID)
	if err != nil {
		return shared.NewDomainError("VALIDATION_ERROR", "Invalid batch ID")
	}
	if req.Delta.IsZero() {
		return shared.NewDomainError("VALIDATION_ERROR", "Correction delta cannot be zero")
	}

	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return err
	}

	if req.Delta.IsPositive() {
		err = s.batchRepo.Restock(ctx, batchID, req.Delta)
	} else {
		err = s.batchRepo.ApplyDeduction(ctx, batchID, req.Delta.Neg())
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx, batch.ProductID)

	s.logger.Info("stock corrected",
		zap.String("batch_id", batchID.String()),
		zap.String("delta", req.Delta.String()),
		zap.String("reason", req.Reason),
	)
	return nil
}

// ExpiryAlerts lists batches expiring within the horizon and already
// expired batches. Drained batches never alert.
func (s *LedgerService) ExpiryAlerts(ctx context.Context, filter shared.Filter) (*ExpiryAlertResponse, error) {
	today := s.clock.Today()

	expiringSoon, err := s.batchRepo.FindExpiringSoon(ctx, today, s.horizonDays, filter)
	if err != nil {
		return nil, err
	}
	expired, err := s.batchRepo.FindExpired(ctx, today, filter)
	if err != nil {
		return nil, err
	}

	return &ExpiryAlertResponse{
		ExpiringSoon: ToBatchResponses(expiringSoon, today, s.horizonDays),
		Expired:      ToBatchResponses(expired, today, s.horizonDays),
		HorizonDays:  s.horizonDays,
	}, nil
}

// LowStockProducts lists active products whose availability has fallen
// below their minimum stock threshold
func (s *LedgerService) LowStockProducts(ctx context.Context, filter shared.Filter) ([]LowStockResponse, error) {
	products, err := s.productRepo.FindActive(ctx, filter)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	result := make([]LowStockResponse, 0)
	for i := range products {
		p := &products[i]
		if p.MinStock.IsZero() {
			continue
		}
		available, err := s.batchRepo.AvailableQuantity(ctx, p.ID, today)
		if err != nil {
			return nil, err
		}
		if available.LessThan(p.MinStock) {
			result = append(result, LowStockResponse{
				ProductID: p.ID.String(),
				Name:      p.Name,
				MinStock:  p.MinStock,
				Available: available,
			})
		}
	}
	return result, nil
}

// LowStockResponse reports a product below its minimum stock threshold
type LowStockResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	MinStock  decimal.Decimal `json:"min_stock"`
	Available decimal.Decimal `json:"available"`
}

func (s *LedgerService) invalidate(ctx context.Context, productIDs ...uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, productIDs...); err != nil {
		s.logger.Warn("availability cache invalidation failed", zap.Error(err))
	}
}
