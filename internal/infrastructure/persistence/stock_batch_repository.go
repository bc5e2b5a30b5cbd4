package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStockBatchRepository implements StockBatchRepository using GORM.
// All quantity mutations go through conditional UPDATE statements; batch
// rows are never read-modified-written.
type GormStockBatchRepository struct {
	db *gorm.DB
}

// NewGormStockBatchRepository creates a new GormStockBatchRepository
func NewGormStockBatchRepository(db *gorm.DB) *GormStockBatchRepository {
	return &GormStockBatchRepository{db: db}
}

// FindByID finds a stock batch by its ID
func (r *GormStockBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockBatch, error) {
	var model models.StockBatchModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProduct returns all batches for a product, drained ones included
func (r *GormStockBatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]inventory.StockBatch, error) {
	var modelList []models.StockBatchModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.StockBatchModel{}).
			Where("product_id = ?", productID),
		filter,
	)

	if err := query.Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toStockBatches(modelList), nil
}

// FindAvailable returns non-expired batches with stock in FEFO order.
// A batch expiring today still counts as available.
func (r *GormStockBatchRepository) FindAvailable(ctx context.Context, productID uuid.UUID, today time.Time) ([]inventory.StockBatch, error) {
	var modelList []models.StockBatchModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND quantity > 0 AND expiry_date >= ?", productID, today).
		Order("expiry_date ASC, purchase_date ASC, id ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toStockBatches(modelList), nil
}

// FindExpiringSoon returns batches with stock expiring within horizonDays.
// The horizon is exclusive, matching StockBatch.Classify: a batch expiring
// exactly at today+horizon is still active.
func (r *GormStockBatchRepository) FindExpiringSoon(ctx context.Context, today time.Time, horizonDays int, filter shared.Filter) ([]inventory.StockBatch, error) {
	threshold := today.AddDate(0, 0, horizonDays)

	var modelList []models.StockBatchModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.StockBatchModel{}).
			Where("quantity > 0").
			Where("expiry_date >= ? AND expiry_date < ?", today, threshold),
		filter,
	)

	if err := query.Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toStockBatches(modelList), nil
}

// FindExpired returns expired batches that still hold stock
func (r *GormStockBatchRepository) FindExpired(ctx context.Context, today time.Time, filter shared.Filter) ([]inventory.StockBatch, error) {
	var modelList []models.StockBatchModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.StockBatchModel{}).
			Where("quantity > 0").
			Where("expiry_date < ?", today),
		filter,
	)

	if err := query.Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toStockBatches(modelList), nil
}

// AvailableQuantity sums quantity over non-expired batches with stock
func (r *GormStockBatchRepository) AvailableQuantity(ctx context.Context, productID uuid.UUID, today time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.StockBatchModel{}).
		Select("COALESCE(SUM(quantity), 0) AS total").
		Where("product_id = ? AND quantity > 0 AND expiry_date >= ?", productID, today).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Save creates or updates a stock batch
func (r *GormStockBatchRepository) Save(ctx context.Context, batch *inventory.StockBatch) error {
	model := models.StockBatchModelFromDomain(batch)
	return r.db.WithContext(ctx).Save(model).Error
}

// ApplyDeduction performs an atomic conditional decrement. The WHERE guard
// makes overlapping deductions serialize at the row: whichever UPDATE runs
// second sees the reduced quantity and matches zero rows if it no longer
// covers the amount.
func (r *GormStockBatchRepository) ApplyDeduction(ctx context.Context, batchID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("VALIDATION_ERROR", "Deduction amount must be positive")
	}

	result := r.db.WithContext(ctx).
		Model(&models.StockBatchModel{}).
		Where("id = ? AND quantity >= ?", batchID, amount).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity - ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Zero rows means either the batch is gone or another commit
		// drained it first. Distinguish so callers can retry conflicts.
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&models.StockBatchModel{}).
			Where("id = ?", batchID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Restock atomically adds quantity back to a batch
func (r *GormStockBatchRepository) Restock(ctx context.Context, batchID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("VALIDATION_ERROR", "Restock amount must be positive")
	}

	result := r.db.WithContext(ctx).
		Model(&models.StockBatchModel{}).
		Where("id = ?", batchID).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormStockBatchRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, StockBatchSortFields, "expiry_date")
		orderDir := ValidateSortOrder(filter.OrderDir)
		query = query.Order(orderBy + " " + orderDir)
	} else {
		query = query.Order("expiry_date ASC, purchase_date ASC, id ASC")
	}

	for key, value := range filter.Filters {
		switch key {
		case "has_stock":
			if value == true {
				query = query.Where("quantity > 0")
			}
		case "supplier":
			query = query.Where("supplier = ?", value)
		}
	}

	return query
}

func toStockBatches(modelList []models.StockBatchModel) []inventory.StockBatch {
	batches := make([]inventory.StockBatch, len(modelList))
	for i := range modelList {
		batches[i] = *modelList[i].ToDomain()
	}
	return batches
}

// Ensure GormStockBatchRepository implements StockBatchRepository
var _ inventory.StockBatchRepository = (*GormStockBatchRepository)(nil)
