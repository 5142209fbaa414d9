package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/inventory_management_app/internal/core/domain"
)

// StockAdjustmentReader defines read operations for stock adjustments
type StockAdjustmentReader interface {
	// FindStockAdjustmentByID retrieves one adjustment, or apperrors.ErrNotFound.
	FindStockAdjustmentByID(ctx context.Context, adjustmentID string) (*domain.StockAdjustment, error)

	// ListDueAdjustments returns pending adjustments created before cutoff, oldest first.
	ListDueAdjustments(ctx context.Context, cutoff time.Time, limit int) ([]domain.StockAdjustment, error)

	// ListPendingAdjustmentsByProduct returns every pending adjustment of one product, oldest first.
	ListPendingAdjustmentsByProduct(ctx context.Context, productID string) ([]domain.StockAdjustment, error)

	// ListStockAdjustments returns adjustments, newest first, using token-based pagination.
	// An empty status lists every status.
	ListStockAdjustments(ctx context.Context, status domain.AdjustmentStatus, limit int, nextToken *string) ([]domain.StockAdjustment, *string, error)

	// CountPendingAdjustments returns how many adjustments still wait to be applied.
	CountPendingAdjustments(ctx context.Context) (int, error)
}

// StockAdjustmentWriter defines write operations for stock adjustments
type StockAdjustmentWriter interface {
	// SaveStockAdjustment inserts a standalone adjustment.
	SaveStockAdjustment(ctx context.Context, adj domain.StockAdjustment) error

	// MarkAdjustmentApplied flags the adjustment as applied remotely.
	MarkAdjustmentApplied(ctx context.Context, adjustmentID string) error

	// RecordAdjustmentFailure increments the attempt counter and stores the last error.
	// When abandon is true the adjustment leaves the pending set.
	RecordAdjustmentFailure(ctx context.Context, adjustmentID string, lastError string, abandon bool) error
}

// StockAdjustmentRepositoryFacade combines all stock adjustment repository interfaces
type StockAdjustmentRepositoryFacade interface {
	StockAdjustmentReader
	StockAdjustmentWriter
}
