package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// Each binary fills only the repositories backed by its own schema.
type RepositoryProvider struct {
	TransactionRepo     TransactionRepositoryWithTx
	StockAdjustmentRepo StockAdjustmentRepositoryFacade
	ProductRepo         ProductRepositoryFacade
}
