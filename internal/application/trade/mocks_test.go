package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/catalog"
	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

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

// MockSaleRepository implements trade.SaleRepository for testing
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByReceiptCode(ctx context.Context, receiptCode string) (*trade.Sale, error) {
	args := m.Called(ctx, receiptCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Sale, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindBetween(ctx context.Context, from, to time.Time) ([]trade.Sale, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) Save(ctx context.Context, sale *trade.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockSalesReturnRepository implements trade.SalesReturnRepository for testing
type MockSalesReturnRepository struct {
	mock.Mock
}

func (m *MockSalesReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesReturn, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SalesReturn), args.Error(1)
}

func (m *MockSalesReturnRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]trade.SalesReturn, error) {
	args := m.Called(ctx, saleID)
	return args.Get(0).([]trade.SalesReturn), args.Error(1)
}

func (m *MockSalesReturnRepository) Save(ctx context.Context, ret *trade.SalesReturn) error {
	args := m.Called(ctx, ret)
	return args.Error(0)
}

func (m *MockSalesReturnRepository) ReturnedQuantity(ctx context.Context, saleItemID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, saleItemID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockReceiptSequenceRepository implements trade.ReceiptSequenceRepository for testing
type MockReceiptSequenceRepository struct {
	mock.Mock
}

func (m *MockReceiptSequenceRepository) Next(ctx context.Context, prefix string) (int64, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).(int64), args.Error(1)
}

// MockCacheInvalidator implements CacheInvalidator for testing
type MockCacheInvalidator struct {
	mock.Mock
}

func (m *MockCacheInvalidator) Invalidate(ctx context.Context, productIDs ...uuid.UUID) error {
	args := m.Called(ctx, productIDs)
	return args.Error(0)
}
