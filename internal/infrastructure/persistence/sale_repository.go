package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/domain/trade"
	"github.com/pharmapos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID finds a sale with its items by ID
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).Preload("Items").First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByIDForUpdate reads a sale with its items under FOR UPDATE so
// concurrent returns against the same sale serialize on its row
func (r *GormSaleRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByReceiptCode finds a sale by its receipt code
func (r *GormSaleRepository) FindByReceiptCode(ctx context.Context, receiptCode string) (*trade.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("receipt_code = ?", receiptCode).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAll returns sales matching the filter
func (r *GormSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Sale, error) {
	var modelList []models.SaleModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.SaleModel{}).Preload("Items"),
		filter,
	)

	if err := query.Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toSales(modelList)
}

// FindBetween returns sales committed in [from, to]
func (r *GormSaleRepository) FindBetween(ctx context.Context, from, to time.Time) ([]trade.Sale, error) {
	var modelList []models.SaleModel
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("created_at >= ? AND created_at <= ?", from, to).
		Order("created_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toSales(modelList)
}

// Save persists the sale with its items and deduction records. Sales are
// append-only; this inserts, it never rewrites committed history.
func (r *GormSaleRepository) Save(ctx context.Context, sale *trade.Sale) error {
	model, err := models.SaleModelFromDomain(sale)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// Count counts sales matching the filter
func (r *GormSaleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyConditions(r.db.WithContext(ctx).Model(&models.SaleModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormSaleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyConditions(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, SaleSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

func (r *GormSaleRepository) applyConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("receipt_code ILIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "operator_id":
			query = query.Where("operator_id = ?", value)
		case "payment_method":
			query = query.Where("payment_method = ?", value)
		}
	}
	return query
}

func toSales(modelList []models.SaleModel) ([]trade.Sale, error) {
	sales := make([]trade.Sale, len(modelList))
	for i := range modelList {
		sale, err := modelList[i].ToDomain()
		if err != nil {
			return nil, err
		}
		sales[i] = *sale
	}
	return sales, nil
}

// Ensure GormSaleRepository implements SaleRepository
var _ trade.SaleRepository = (*GormSaleRepository)(nil)
