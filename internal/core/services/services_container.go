package services

import (
	portsrepo "github.com/SscSPs/inventory_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/inventory_management_app/internal/core/ports/services"
	"github.com/SscSPs/inventory_management_app/internal/platform/config"
)

// NewTransactionServiceContainer wires the coordinator and the reconciler around one shared product lock.
// The reconciler is also returned on its own so the caller can run its loop.
func NewTransactionServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, stock portssvc.StockLedgerClient, locker portssvc.ProductLocker) (*portssvc.ServiceContainer, *StockReconciler) {
	reconciler := NewStockReconciler(repos.StockAdjustmentRepo, stock, locker, ReconcilerConfig{
		Interval:    cfg.ReconcileInterval,
		Grace:       cfg.ReconcileGrace,
		BatchSize:   cfg.ReconcileBatchSize,
		MaxAttempts: cfg.ReconcileMaxAttempts,
	})

	container := &portssvc.ServiceContainer{
		Transaction: NewTransactionService(
			repos.TransactionRepo,
			repos.StockAdjustmentRepo,
			stock,
			WithProductLocker(locker),
		),
		Reconciler: reconciler,
	}
	return container, reconciler
}

// NewProductServiceContainer wires the stock ledger store.
func NewProductServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Product: NewProductService(repos.ProductRepo),
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.TransactionSvcFacade = (*transactionService)(nil)
	_ portssvc.ProductSvcFacade     = (*productService)(nil)
	_ portssvc.StockReconcilerSvc   = (*StockReconciler)(nil)
)
