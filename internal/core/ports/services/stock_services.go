package services

import (
	"context"

	"github.com/SscSPs/inventory_management_app/internal/core/domain"
)

// StockLedgerClient talks to the service that owns product stock.
// Errors are classified with apperrors kinds: ProductNotFound, InsufficientStock,
// RemoteUnreachable or Unexpected.
type StockLedgerClient interface {
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	CheckAvailability(ctx context.Context, productID string, requiredQty int) (domain.Availability, error)
	AdjustStock(ctx context.Context, productID string, qty int, direction domain.StockDirection) error
}

// ProductLocker serializes stock-affecting sequences on the same product.
type ProductLocker interface {
	// Lock blocks until the product is held or ctx is done. The returned func releases it.
	Lock(ctx context.Context, productID string) (unlock func(), err error)
}

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	Examined  int
	Applied   int
	Failed    int
	Abandoned int
}

// StockReconcilerSvc applies stock adjustments that were committed locally but not remotely.
type StockReconcilerSvc interface {
	// RunOnce sweeps the due adjustments once.
	RunOnce(ctx context.Context) (ReconcileReport, error)

	// ListAdjustments pages through recorded adjustments, newest first.
	ListAdjustments(ctx context.Context, status domain.AdjustmentStatus, limit int, nextToken *string) ([]domain.StockAdjustment, *string, error)
}
