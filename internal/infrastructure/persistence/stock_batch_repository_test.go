package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStockBatchTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.StockBatchModel{})
	require.NoError(t, err)

	return db
}

func newTestBatch(t *testing.T, productID uuid.UUID, batchNumber string, qty int64, expiry, purchased time.Time) *inventory.StockBatch {
	t.Helper()
	batch, err := inventory.NewStockBatch(
		productID,
		batchNumber,
		decimal.NewFromInt(qty),
		decimal.NewFromInt(4),
		decimal.NewFromInt(6),
		expiry,
		purchased,
		"Acme Pharma",
	)
	require.NoError(t, err)
	return batch
}

func TestGormStockBatchRepository_SaveAndFindByID(t *testing.T) {
	db := setupStockBatchTestDB(t)
	repo := NewGormStockBatchRepository(db)
	ctx := context.Background()

	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	batch := newTestBatch(t, uuid.New(), "B-001", 15, today.AddDate(0, 2, 0), today.AddDate(0, -1, 0))

	require.NoError(t, repo.Save(ctx, batch))

	found, err := repo.FindByID(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, batch.ID, found.ID)
	assert.Equal(t, "B-001", found.BatchNumber)
	assert.True(t, decimal.NewFromInt(15).Equal(found.Quantity))
}

func TestGormStockBatchRepository_FindByID_NotFound(t *testing.T) {
	db := setupStockBatchTestDB(t)
	repo := NewGormStockBatchRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormStockBatchRepository_FindAvailable_FEFOOrder(t *testing.T) {
	db := setupStockBatchTestDB(t)
	repo := NewGormStockBatchRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	purchased := today.AddDate(0, -1, 0)

	late := newTestBatch(t, productID, "B-LATE", 10, today.AddDate(0, 6, 0), purchased)
	early := newTestBatch(t, productID, "B-EARLY", 5, today.AddDate(0, 1, 0), purchased)
	expired := newTestBatch(t, productID, "B-EXPIRED", 7, today.AddDate(0, 1, 0), purchased)
	expired.ExpiryDate = today.AddDate(0, 0, -1)
	drained := newTestBatch(t, productID, "B-DRAINED", 3, today.AddDate(0, 3, 0), purchased)
	drained.Quantity = decimal.Zero

	for _, b := range []*inventory.StockBatch{late, early, expired, drained} {
		require.NoError(t, repo.Save(ctx, b))
	}

	batches, err := repo.FindAvailable(ctx, productID, today)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "B-EARLY", batches[0].BatchNumber)
	assert.Equal(t, "B-LATE", batches[1].BatchNumber)
}

func TestGormStockBatchRepository_FindAvailable_ExpiringTodayIncluded(t *testing.T) {
	db := setupStockBatchTestDB(t)
	repo := NewGormStockBatchRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	batch := newTestBatch(t, productID, "B-TODAY", 4, today.AddDate(0, 1, 0), today.AddDate(0, -1, 0))
	batch.ExpiryDate = today
	require.NoError(t, repo.Save(ctx, batch))

	batches, err := repo.FindAvailable(ctx, productID, today)
	require.NoError(t, err)
	assert.Len(t, batches, 1)
}

func TestGormStockBatchRepository_AvailableQuantity(t *testing.T) {
	db := setupStockBatchTestDB(t)
	repo := NewGormStockBatchRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	purchased := today.AddDate(0, -1, 0)

	b1 := newTestBatch(t, productID, "B-1", 5, today.AddDate(0, 1, 0), purchased)
	b2 := newTestBatch(t, productID, "B-2", 10, today.AddDate(0, 2, 0), purchased)
	gone := newTestBatch(t, productID, "B-3", 8, today.AddDate(0, 2, 0), purchased)
	gone.ExpiryDate = today.AddDate(0, 0, -1)

	for _, b := range []*inventory.StockBatch{b1, b2, gone} {
		require.NoError(t, repo.Save(ctx, b))
	}

	qty, err := repo.AvailableQuantity(ctx, productID, today)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(15).Equal(qty), "got %s", qty)
}

func TestGormStockBatchRepository_FindExpiringSoonAndExpired(t *testing.T) {
	db := setupStockBatchTestDB(t)
	repo := NewGormStockBatchRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	purchased := today.AddDate(0, -1, 0)

	soon := newTestBatch(t, productID, "B-SOON", 5, today.AddDate(0, 0, 10), purchased)
	far := newTestBatch(t, productID, "B-FAR", 5, today.AddDate(0, 6, 0), purchased)
	past := newTestBatch(t, productID, "B-PAST", 5, today.AddDate(0, 1, 0), purchased)
	past.ExpiryDate = today.AddDate(0, 0, -2)

	for _, b := range []*inventory.StockBatch{soon, far, past} {
		require.NoError(t, repo.Save(ctx, b))
	}

	expiring, err := repo.FindExpiringSoon(ctx, today, 30, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, "B-SOON", expiring[0].BatchNumber)

	expired, err := repo.FindExpired(ctx, today, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "B-PAST", expired[0].BatchNumber)
}

func TestGormStockBatchRepository_FindExpiringSoon_HorizonExclusive(t *testing.T) {
	db := setupStockBatchTestDB(t)
	repo := NewGormStockBatchRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	purchased := today.AddDate(0, -1, 0)
	horizonDays := 30

	// Expires exactly at the horizon: still active, so not an alert
	atHorizon := newTestBatch(t, productID, "B-HORIZON", 5, today.AddDate(0, 0, horizonDays), purchased)
	inside := newTestBatch(t, productID, "B-INSIDE", 5, today.AddDate(0, 0, horizonDays-1), purchased)

	for _, b := range []*inventory.StockBatch{atHorizon, inside} {
		require.NoError(t, repo.Save(ctx, b))
	}

	expiring, err := repo.FindExpiringSoon(ctx, today, horizonDays, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, "B-INSIDE", expiring[0].BatchNumber)

	// The query agrees with the domain classification
	assert.Equal(t, inventory.ExpiryStatusActive, atHorizon.Classify(today, horizonDays))
	assert.Equal(t, inventory.ExpiryStatusExpiringSoon, inside.Classify(today, horizonDays))
}

func TestGormStockBatchRepository_ApplyDeduction(t *testing.T) {
	db := setupStockBatchTestDB(t)
	repo := NewGormStockBatchRepository(db)
	ctx := context.Background()

	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	batch := newTestBatch(t, uuid.New(), "B-001", 5, today.AddDate(0, 2, 0), today.AddDate(0, -1, 0))
	require.NoError(t, repo.Save(ctx, batch))

	t.Run("deducts when quantity covers the amount", func(t *testing.T) {
		err := repo.ApplyDeduction(ctx, batch.ID, decimal.NewFromInt(3))
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, batch.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(2).Equal(found.Quantity), "got %s", found.Quantity)
	})

	t.Run("conflicts when quantity no longer covers the amount", func(t *testing.T) {
		err := repo.ApplyDeduction(ctx, batch.ID, decimal.NewFromInt(3))
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		// Quantity untouched by the failed deduction
		found, err := repo.FindByID(ctx, batch.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(2).Equal(found.Quantity))
	})

	t.Run("not found for missing batch", func(t *testing.T) {
		err := repo.ApplyDeduction(ctx, uuid.New(), decimal.NewFromInt(1))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		err := repo.ApplyDeduction(ctx, batch.ID, decimal.Zero)
		assert.Error(t, err)
	})
}

// Two checkouts race for the last units of the same batch. The conditional
// UPDATE guarantees exactly one wins; the loser gets a conflict and the
// quantity never goes negative. SQLite gives every pooled connection its
// own in-memory database, so the pool is pinned to a single connection.
func TestGormStockBatchRepository_ApplyDeduction_ConcurrentDrain(t *testing.T) {
	db := setupStockBatchTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	repo := NewGormStockBatchRepository(db)
	ctx := context.Background()

	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	batch := newTestBatch(t, uuid.New(), "B-001", 5, today.AddDate(0, 2, 0), today.AddDate(0, -1, 0))
	require.NoError(t, repo.Save(ctx, batch))

	start := make(chan struct{})
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = repo.ApplyDeduction(ctx, batch.ID, decimal.NewFromInt(5))
		}(i)
	}
	close(start)
	wg.Wait()

	var won, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, shared.ErrConcurrencyConflict):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, conflicted)

	found, err := repo.FindByID(ctx, batch.ID)
	require.NoError(t, err)
	assert.True(t, found.Quantity.IsZero(), "got %s", found.Quantity)
}

func TestGormStockBatchRepository_Restock(t *testing.T) {
	db := setupStockBatchTestDB(t)
	repo := NewGormStockBatchRepository(db)
	ctx := context.Background()

	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	batch := newTestBatch(t, uuid.New(), "B-001", 2, today.AddDate(0, 2, 0), today.AddDate(0, -1, 0))
	require.NoError(t, repo.Save(ctx, batch))

	require.NoError(t, repo.Restock(ctx, batch.ID, decimal.NewFromInt(3)))

	found, err := repo.FindByID(ctx, batch.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5).Equal(found.Quantity), "got %s", found.Quantity)

	assert.ErrorIs(t, repo.Restock(ctx, uuid.New(), decimal.NewFromInt(1)), shared.ErrNotFound)
}
