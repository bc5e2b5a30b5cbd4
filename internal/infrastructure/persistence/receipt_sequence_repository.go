package persistence

import (
	"context"
	"time"

	"github.com/pharmapos/backend/internal/domain/trade"
	"github.com/pharmapos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReceiptSequenceRepository implements ReceiptSequenceRepository on a
// row-locked counter table. Reading MAX(receipt_code) and inserting is a
// race under concurrent checkouts; the FOR UPDATE read here serializes
// sequence reservation instead.
type GormReceiptSequenceRepository struct {
	db *gorm.DB
}

// NewGormReceiptSequenceRepository creates a new GormReceiptSequenceRepository
func NewGormReceiptSequenceRepository(db *gorm.DB) *GormReceiptSequenceRepository {
	return &GormReceiptSequenceRepository{db: db}
}

// Next reserves and returns the next sequence number for the prefix. Must
// run inside the caller's transaction so an aborted sale does not consume
// observable gaps beyond the rolled-back reservation.
func (r *GormReceiptSequenceRepository) Next(ctx context.Context, prefix string) (int64, error) {
	tx := r.db.WithContext(ctx)

	// Make sure the counter row exists before locking it
	seed := models.ReceiptSequenceModel{Prefix: prefix, Value: 0, UpdatedAt: time.Now()}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "prefix"}},
		DoNothing: true,
	}).Create(&seed).Error; err != nil {
		return 0, err
	}

	var seq models.ReceiptSequenceModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("prefix = ?", prefix).
		First(&seq).Error; err != nil {
		return 0, err
	}

	next := seq.Value + 1
	if err := tx.Model(&models.ReceiptSequenceModel{}).
		Where("prefix = ?", prefix).
		Updates(map[string]any{
			"value":      next,
			"updated_at": time.Now(),
		}).Error; err != nil {
		return 0, err
	}

	return next, nil
}

// Ensure GormReceiptSequenceRepository implements ReceiptSequenceRepository
var _ trade.ReceiptSequenceRepository = (*GormReceiptSequenceRepository)(nil)
