package trade

import (
	"context"

	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/pharmapos/backend/internal/domain/trade"
)

// TransactionScope provides transactional access to the repositories a
// sale or return commit touches. Everything executed within one scope is
// committed or rolled back atomically: a sale record and its batch
// deductions either both land or neither does.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repositories bound to the current
// transaction.
type TransactionalRepositories interface {
	// BatchRepo returns the stock batch repository scoped to the transaction
	BatchRepo() inventory.StockBatchRepository
	// SaleRepo returns the sale repository scoped to the transaction
	SaleRepo() trade.SaleRepository
	// ReturnRepo returns the sales return repository scoped to the transaction
	ReturnRepo() trade.SalesReturnRepository
	// ReceiptRepo returns the receipt sequence repository scoped to the transaction
	ReceiptRepo() trade.ReceiptSequenceRepository
}

// NoOpTransactionScope runs the unit of work without a real transaction.
// Useful in tests where the repositories are in-memory fakes.
type NoOpTransactionScope struct {
	batchRepo   inventory.StockBatchRepository
	saleRepo    trade.SaleRepository
	returnRepo  trade.SalesReturnRepository
	receiptRepo trade.ReceiptSequenceRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	batchRepo inventory.StockBatchRepository,
	saleRepo trade.SaleRepository,
	returnRepo trade.SalesReturnRepository,
	receiptRepo trade.ReceiptSequenceRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		batchRepo:   batchRepo,
		saleRepo:    saleRepo,
		returnRepo:  returnRepo,
		receiptRepo: receiptRepo,
	}
}

// Execute runs the function without transactional guarantees
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// BatchRepo returns the stock batch repository
func (s *NoOpTransactionScope) BatchRepo() inventory.StockBatchRepository { return s.batchRepo }

// SaleRepo returns the sale repository
func (s *NoOpTransactionScope) SaleRepo() trade.SaleRepository { return s.saleRepo }

// ReturnRepo returns the sales return repository
func (s *NoOpTransactionScope) ReturnRepo() trade.SalesReturnRepository { return s.returnRepo }

// ReceiptRepo returns the receipt sequence repository
func (s *NoOpTransactionScope) ReceiptRepo() trade.ReceiptSequenceRepository { return s.receiptRepo }
