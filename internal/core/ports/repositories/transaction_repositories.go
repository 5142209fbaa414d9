package repositories

import (
	"context"

	"github.com/SscSPs/inventory_management_app/internal/core/domain"
)

// TransactionReader defines read operations for transaction data
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction, or apperrors.ErrNotFound.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions returns one page of transactions matching the filter and the total match count.
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int, error)

	// ListTransactionsByProduct returns every transaction of a product, newest transaction date first.
	ListTransactionsByProduct(ctx context.Context, productID string) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for transaction data.
// Each write commits the transaction row together with the stock adjustment
// that pairs it, so a committed local change always has a persisted remote intent.
type TransactionWriter interface {
	// CreateTransactionWithAdjustment inserts the transaction and its pending adjustment atomically.
	CreateTransactionWithAdjustment(ctx context.Context, txn domain.Transaction, adj domain.StockAdjustment) error

	// UpdateTransactionWithAdjustment updates the transaction and inserts its pending adjustment atomically.
	// Returns apperrors.ErrNotFound if the row no longer exists.
	UpdateTransactionWithAdjustment(ctx context.Context, txn domain.Transaction, adj domain.StockAdjustment) error

	// DeleteTransactionWithAdjustment deletes the transaction and inserts its pending reversal atomically.
	// Returns apperrors.ErrNotFound if the row no longer exists.
	DeleteTransactionWithAdjustment(ctx context.Context, transactionID string, adj domain.StockAdjustment) error

	// RevertTransactionCreate removes a transaction and its adjustment when the remote
	// stock change it was paired with never happened.
	RevertTransactionCreate(ctx context.Context, transactionID, adjustmentID string) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}

// TransactionRepositoryWithTx extends TransactionRepositoryFacade with transaction capabilities
type TransactionRepositoryWithTx interface {
	TransactionRepositoryFacade
	TransactionManager
}
