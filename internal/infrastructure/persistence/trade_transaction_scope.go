package persistence

import (
	"context"

	apptrade "github.com/pharmapos/backend/internal/application/trade"
	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/pharmapos/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Everything a sale or return commit touches runs against the same tx, so
// a failed batch deduction rolls back the sale record with it.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// BatchRepo returns the stock batch repository scoped to the transaction
func (r *gormTransactionalRepositories) BatchRepo() inventory.StockBatchRepository {
	return NewGormStockBatchRepository(r.tx)
}

// SaleRepo returns the sale repository scoped to the transaction
func (r *gormTransactionalRepositories) SaleRepo() trade.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

// ReturnRepo returns the sales return repository scoped to the transaction
func (r *gormTransactionalRepositories) ReturnRepo() trade.SalesReturnRepository {
	return NewGormSalesReturnRepository(r.tx)
}

// ReceiptRepo returns the receipt sequence repository scoped to the transaction
func (r *gormTransactionalRepositories) ReceiptRepo() trade.ReceiptSequenceRepository {
	return NewGormReceiptSequenceRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ apptrade.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ apptrade.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
