package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/catalog"
	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockStockBatchRepository implements inventory.StockBatchRepository for testing
type MockStockBatchRepository struct {
	mock.Mock
}

func (m *MockStockBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockBatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockBatch), args.Error(1)
}

func (m *MockStockBatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]inventory.StockBatch, error) {
	args := m.Called(ctx, productID, filter)
	return args.Get(0).([]inventory.StockBatch), args.Error(1)
}

func (m *MockStockBatchRepository) FindAvailable(ctx context.Context, productID uuid.UUID, today time.Time) ([]inventory.StockBatch, error) {
	args := m.Called(ctx, productID, today)
	return args.Get(0).([]inventory.StockBatch), args.Error(1)
}

func (m *MockStockBatchRepository) FindExpiringSoon(ctx context.Context, today time.Time, horizonDays int, filter shared.Filter) ([]inventory.StockBatch, error) {
	args := m.Called(ctx, today, horizonDays, filter)
	return args.Get(0).([]inventory.StockBatch), args.Error(1)
}

func (m *MockStockBatchRepository) FindExpired(ctx context.Context, today time.Time, filter shared.Filter) ([]inventory.StockBatch, error) {
	args := m.Called(ctx, today, filter)
	return args.Get(0).([]inventory.StockBatch), args.Error(1)
}

func (m *MockStockBatchRepository) AvailableQuantity(ctx context.Context, productID uuid.UUID, today time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, productID, today)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockStockBatchRepository) Save(ctx context.Context, batch *inventory.StockBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockStockBatchRepository) ApplyDeduction(ctx context.Context, batchID uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, batchID, amount)
	return args.Error(0)
}

func (m *MockStockBatchRepository) Restock(ctx context.Context, batchID uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, batchID, amount)
	return args.Error(0)
}

// MockProductRepository implements catalog.ProductRepository for testing
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindActive(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockAvailabilityCache implements AvailabilityCache for testing
type MockAvailabilityCache struct {
	mock.Mock
}

func (m *MockAvailabilityCache) Get(ctx context.Context, productID uuid.UUID) (decimal.Decimal, bool, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(decimal.Decimal), args.Bool(1), args.Error(2)
}

func (m *MockAvailabilityCache) Set(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal) error {
	args := m.Called(ctx, productID, quantity)
	return args.Error(0)
}

func (m *MockAvailabilityCache) Invalidate(ctx context.Context, productIDs ...uuid.UUID) error {
	args := m.Called(ctx, productIDs)
	return args.Error(0)
}

func ledgerClock() shared.FixedClock {
	return shared.FixedClock{Instant: time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)}
}

func ledgerProduct(t *testing.T) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct("Amoxicillin 250mg", "antibiotic", "250mg", "capsule")
	require.NoError(t, err)
	return product
}

func ledgerBatch(t *testing.T, productID uuid.UUID, qty int64, expiry time.Time) inventory.StockBatch {
	t.Helper()
	batch, err := inventory.NewStockBatch(
		productID,
		"B-001",
		decimal.NewFromInt(qty),
		decimal.NewFromInt(3),
		decimal.NewFromInt(5),
		expiry,
		expiry.AddDate(0, -6, 0),
		"Acme Pharma",
	)
	require.NoError(t, err)
	return *batch
}

func TestLedgerService_AvailableQuantity(t *testing.T) {
	clock := ledgerClock()
	productID := uuid.New()

	t.Run("cache miss reads the store and warms the cache", func(t *testing.T) {
		batchRepo := new(MockStockBatchRepository)
		cache := new(MockAvailabilityCache)
		svc := NewLedgerService(batchRepo, nil, cache, clock, 30, zap.NewNop())

		cache.On("Get", mock.Anything, productID).Return(decimal.Zero, false, nil)
		batchRepo.On("AvailableQuantity", mock.Anything, productID, clock.Today()).
			Return(decimal.NewFromInt(17), nil)
		cache.On("Set", mock.Anything, productID, decimal.NewFromInt(17)).Return(nil)

		resp, err := svc.AvailableQuantity(context.Background(), productID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(17).Equal(resp.Available))
		cache.AssertExpectations(t)
	})

	t.Run("cache hit skips the store", func(t *testing.T) {
		batchRepo := new(MockStockBatchRepository)
		cache := new(MockAvailabilityCache)
		svc := NewLedgerService(batchRepo, nil, cache, clock, 30, zap.NewNop())

		cache.On("Get", mock.Anything, productID).Return(decimal.NewFromInt(9), true, nil)

		resp, err := svc.AvailableQuantity(context.Background(), productID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(9).Equal(resp.Available))
		batchRepo.AssertNotCalled(t, "AvailableQuantity", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("without a cache the store is authoritative", func(t *testing.T) {
		batchRepo := new(MockStockBatchRepository)
		svc := NewLedgerService(batchRepo, nil, nil, clock, 30, zap.NewNop())

		batchRepo.On("AvailableQuantity", mock.Anything, productID, clock.Today()).
			Return(decimal.NewFromInt(4), nil)

		resp, err := svc.AvailableQuantity(context.Background(), productID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(4).Equal(resp.Available))
	})
}

func TestLedgerService_PurchaseStock(t *testing.T) {
	clock := ledgerClock()
	product := ledgerProduct(t)

	t.Run("creates a batch and invalidates availability", func(t *testing.T) {
		batchRepo := new(MockStockBatchRepository)
		productRepo := new(MockProductRepository)
		cache := new(MockAvailabilityCache)
		svc := NewLedgerService(batchRepo, productRepo, cache, clock, 30, zap.NewNop())

		productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		batchRepo.On("Save", mock.Anything, mock.AnythingOfType("*inventory.StockBatch")).Return(nil)
		cache.On("Invalidate", mock.Anything, []uuid.UUID{product.ID}).Return(nil)

		resp, err := svc.PurchaseStock(context.Background(), StockPurchaseRequest{
			ProductID:    product.ID.String(),
			BatchNumber:  "B-2026-091",
			Quantity:     decimal.NewFromInt(50),
			CostPrice:    decimal.NewFromInt(3),
			SellingPrice: decimal.NewFromInt(5),
			ExpiryDate:   clock.Today().AddDate(1, 0, 0),
			Supplier:     "Acme Pharma",
		})
		require.NoError(t, err)
		assert.Equal(t, "B-2026-091", resp.BatchNumber)
		assert.Equal(t, inventory.ExpiryStatusActive, resp.ExpiryStatus)
		cache.AssertExpectations(t)
	})

	t.Run("rejects inactive products", func(t *testing.T) {
		batchRepo := new(MockStockBatchRepository)
		productRepo := new(MockProductRepository)
		svc := NewLedgerService(batchRepo, productRepo, nil, clock, 30, zap.NewNop())

		retired := ledgerProduct(t)
		retired.Deactivate()
		productRepo.On("FindByID", mock.Anything, retired.ID).Return(retired, nil)

		_, err := svc.PurchaseStock(context.Background(), StockPurchaseRequest{
			ProductID:    retired.ID.String(),
			BatchNumber:  "B-1",
			Quantity:     decimal.NewFromInt(10),
			CostPrice:    decimal.NewFromInt(3),
			SellingPrice: decimal.NewFromInt(5),
			ExpiryDate:   clock.Today().AddDate(1, 0, 0),
		})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		batchRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestLedgerService_CorrectStock(t *testing.T) {
	clock := ledgerClock()
	productID := uuid.New()
	batch := ledgerBatch(t, productID, 20, clock.Today().AddDate(0, 6, 0))

	t.Run("positive delta restocks", func(t *testing.T) {
		batchRepo := new(MockStockBatchRepository)
		svc := NewLedgerService(batchRepo, nil, nil, clock, 30, zap.NewNop())

		batchRepo.On("FindByID", mock.Anything, batch.ID).Return(&batch, nil)
		batchRepo.On("Restock", mock.Anything, batch.ID, decimal.NewFromInt(5)).Return(nil)

		err := svc.CorrectStock(context.Background(), StockCorrectionRequest{
			BatchID: batch.ID.String(),
			Delta:   decimal.NewFromInt(5),
			Reason:  "recount",
		})
		assert.NoError(t, err)
		batchRepo.AssertExpectations(t)
	})

	t.Run("negative delta deducts conditionally", func(t *testing.T) {
		batchRepo := new(MockStockBatchRepository)
		svc := NewLedgerService(batchRepo, nil, nil, clock, 30, zap.NewNop())

		batchRepo.On("FindByID", mock.Anything, batch.ID).Return(&batch, nil)
		batchRepo.On("ApplyDeduction", mock.Anything, batch.ID, decimal.NewFromInt(3)).Return(nil)

		err := svc.CorrectStock(context.Background(), StockCorrectionRequest{
			BatchID: batch.ID.String(),
			Delta:   decimal.NewFromInt(-3),
			Reason:  "breakage",
		})
		assert.NoError(t, err)
		batchRepo.AssertExpectations(t)
	})

	t.Run("overdraw surfaces the conflict", func(t *testing.T) {
		batchRepo := new(MockStockBatchRepository)
		svc := NewLedgerService(batchRepo, nil, nil, clock, 30, zap.NewNop())

		batchRepo.On("FindByID", mock.Anything, batch.ID).Return(&batch, nil)
		batchRepo.On("ApplyDeduction", mock.Anything, batch.ID, decimal.NewFromInt(99)).
			Return(shared.ErrConcurrencyConflict)

		err := svc.CorrectStock(context.Background(), StockCorrectionRequest{
			BatchID: batch.ID.String(),
			Delta:   decimal.NewFromInt(-99),
			Reason:  "typo",
		})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("zero delta is rejected", func(t *testing.T) {
		svc := NewLedgerService(new(MockStockBatchRepository), nil, nil, clock, 30, zap.NewNop())
		err := svc.CorrectStock(context.Background(), StockCorrectionRequest{
			BatchID: batch.ID.String(),
			Delta:   decimal.Zero,
			Reason:  "noop",
		})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestLedgerService_ExpiryAlerts(t *testing.T) {
	clock := ledgerClock()
	productID := uuid.New()
	batchRepo := new(MockStockBatchRepository)
	svc := NewLedgerService(batchRepo, nil, nil, clock, 30, zap.NewNop())

	soon := ledgerBatch(t, productID, 5, clock.Today().AddDate(0, 0, 10))
	expired := ledgerBatch(t, productID, 3, clock.Today().AddDate(0, 0, 20))
	expired.ExpiryDate = clock.Today().AddDate(0, 0, -1)

	batchRepo.On("FindExpiringSoon", mock.Anything, clock.Today(), 30, shared.Filter{}).
		Return([]inventory.StockBatch{soon}, nil)
	batchRepo.On("FindExpired", mock.Anything, clock.Today(), shared.Filter{}).
		Return([]inventory.StockBatch{expired}, nil)

	alerts, err := svc.ExpiryAlerts(context.Background(), shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 30, alerts.HorizonDays)
	require.Len(t, alerts.ExpiringSoon, 1)
	assert.Equal(t, inventory.ExpiryStatusExpiringSoon, alerts.ExpiringSoon[0].ExpiryStatus)
	require.Len(t, alerts.Expired, 1)
	assert.Equal(t, inventory.ExpiryStatusExpired, alerts.Expired[0].ExpiryStatus)
}

func TestLedgerService_LowStockProducts(t *testing.T) {
	clock := ledgerClock()
	batchRepo := new(MockStockBatchRepository)
	productRepo := new(MockProductRepository)
	svc := NewLedgerService(batchRepo, productRepo, nil, clock, 30, zap.NewNop())

	low := ledgerProduct(t)
	low.MinStock = decimal.NewFromInt(10)
	fine := ledgerProduct(t)
	fine.MinStock = decimal.NewFromInt(10)
	unthresholded := ledgerProduct(t)

	productRepo.On("FindActive", mock.Anything, shared.Filter{}).
		Return([]catalog.Product{*low, *fine, *unthresholded}, nil)
	batchRepo.On("AvailableQuantity", mock.Anything, low.ID, clock.Today()).
		Return(decimal.NewFromInt(4), nil)
	batchRepo.On("AvailableQuantity", mock.Anything, fine.ID, clock.Today()).
		Return(decimal.NewFromInt(25), nil)

	result, err := svc.LowStockProducts(context.Background(), shared.Filter{})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, low.ID.String(), result[0].ProductID)
	// Products without a threshold never alert and are never queried
	batchRepo.AssertNotCalled(t, "AvailableQuantity", mock.Anything, unthresholded.ID, mock.Anything)
}
