package pgsql

import (
	portsrepo "github.com/SscSPs/inventory_management_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewTransactionRepositoryProvider wires the repositories backed by the transaction service schema.
func NewTransactionRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TransactionRepo:     newPgxTransactionRepository(dbPool),
		StockAdjustmentRepo: newPgxStockAdjustmentRepository(dbPool),
	}
}

// NewProductRepositoryProvider wires the repositories backed by the product service schema.
func NewProductRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		ProductRepo: newPgxProductRepository(dbPool),
	}
}
