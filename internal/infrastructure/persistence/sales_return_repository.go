package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/domain/trade"
	"github.com/pharmapos/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSalesReturnRepository implements SalesReturnRepository using GORM
type GormSalesReturnRepository struct {
	db *gorm.DB
}

// NewGormSalesReturnRepository creates a new GormSalesReturnRepository
func NewGormSalesReturnRepository(db *gorm.DB) *GormSalesReturnRepository {
	return &GormSalesReturnRepository{db: db}
}

// FindByID finds a return with its items by ID
func (r *GormSalesReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesReturn, error) {
	var model models.SalesReturnModel
	if err := r.db.WithContext(ctx).Preload("Items").First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySale returns all returns recorded against a sale
func (r *GormSalesReturnRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]trade.SalesReturn, error) {
	var modelList []models.SalesReturnModel
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("sale_id = ?", saleID).
		Order("created_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}

	returns := make([]trade.SalesReturn, len(modelList))
	for i := range modelList {
		returns[i] = *modelList[i].ToDomain()
	}
	return returns, nil
}

// Save persists the return with its items. Returns are append-only.
func (r *GormSalesReturnRepository) Save(ctx context.Context, ret *trade.SalesReturn) error {
	model := models.SalesReturnModelFromDomain(ret)
	return r.db.WithContext(ctx).Create(model).Error
}

// ReturnedQuantity sums prior returned quantity for a sale line
func (r *GormSalesReturnRepository) ReturnedQuantity(ctx context.Context, saleItemID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ReturnItemModel{}).
		Select("COALESCE(SUM(quantity), 0) AS total").
		Where("sale_item_id = ?", saleItemID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Ensure GormSalesReturnRepository implements SalesReturnRepository
var _ trade.SalesReturnRepository = (*GormSalesReturnRepository)(nil)
