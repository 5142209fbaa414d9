package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/inventory_management_app/internal/adapters/locking"
	"github.com/SscSPs/inventory_management_app/internal/apperrors"
	"github.com/SscSPs/inventory_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/inventory_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/inventory_management_app/internal/core/ports/services"
	"github.com/SscSPs/inventory_management_app/internal/platform/metrics"
)

const (
	defaultListAdjustmentsLimit = 20
	maxListAdjustmentsLimit     = 100
)

// ReconcilerConfig tunes the background sweep.
type ReconcilerConfig struct {
	Interval    time.Duration
	Grace       time.Duration
	BatchSize   int
	MaxAttempts int
}

// StockReconciler applies stock adjustments committed locally whose remote call failed or never ran.
type StockReconciler struct {
	BaseService
	adjRepo portsrepo.StockAdjustmentRepositoryFacade
	stock   portssvc.StockLedgerClient
	locker  portssvc.ProductLocker
	cfg     ReconcilerConfig
	now     func() time.Time
}

var _ portssvc.StockReconcilerSvc = (*StockReconciler)(nil)

// NewStockReconciler creates a reconciler. locker must be the one the coordinator uses.
func NewStockReconciler(adjRepo portsrepo.StockAdjustmentRepositoryFacade, stock portssvc.StockLedgerClient, locker portssvc.ProductLocker, cfg ReconcilerConfig) *StockReconciler {
	if locker == nil {
		locker = locking.NewMemoryLocker()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	return &StockReconciler{
		adjRepo: adjRepo,
		stock:   stock,
		locker:  locker,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Start sweeps on every tick until ctx is done.
func (r *StockReconciler) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.LogInfo(ctx, "Stock reconciler started", slog.Duration("interval", r.cfg.Interval))
	for {
		select {
		case <-ctx.Done():
			r.LogInfo(ctx, "Stock reconciler stopped")
			return nil
		case <-ticker.C:
			report, err := r.RunOnce(ctx)
			if err != nil {
				r.LogError(ctx, err, "Stock reconciliation pass failed")
				continue
			}
			if report.Examined > 0 {
				r.LogInfo(ctx, "Stock reconciliation pass finished",
					slog.Int("examined", report.Examined),
					slog.Int("applied", report.Applied),
					slog.Int("failed", report.Failed),
					slog.Int("abandoned", report.Abandoned))
			}
		}
	}
}

// RunOnce sweeps the pending adjustments older than the grace period, oldest first.
func (r *StockReconciler) RunOnce(ctx context.Context) (portssvc.ReconcileReport, error) {
	var report portssvc.ReconcileReport

	due, err := r.adjRepo.ListDueAdjustments(ctx, r.now().UTC().Add(-r.cfg.Grace), r.cfg.BatchSize)
	if err != nil {
		return report, fmt.Errorf("failed to list due stock adjustments: %w", err)
	}

	for _, adj := range due {
		if ctx.Err() != nil {
			break
		}
		report.Examined++
		switch r.reconcile(ctx, adj) {
		case domain.AdjustmentApplied:
			report.Applied++
		case domain.AdjustmentAbandoned:
			report.Abandoned++
		case domain.AdjustmentPending:
			report.Failed++
		}
	}

	if pending, err := r.adjRepo.CountPendingAdjustments(ctx); err == nil {
		metrics.PendingAdjustments.Set(float64(pending))
	} else {
		r.LogError(ctx, err, "Failed to count pending stock adjustments")
	}
	return report, nil
}

// reconcile applies one adjustment and returns the status it ends in, or "" when it was already settled.
func (r *StockReconciler) reconcile(ctx context.Context, adj domain.StockAdjustment) domain.AdjustmentStatus {
	logger := r.GetLogger(ctx).With(
		slog.String("operation", "reconcile"),
		slog.String("adjustment_id", adj.ID),
		slog.String("product_id", adj.ProductID),
		slog.String("adjustment_operation", string(adj.Operation)),
	)
	if adj.TransactionID != nil {
		logger = logger.With(slog.String("transaction_id", *adj.TransactionID))
	}

	unlock, err := r.locker.Lock(ctx, adj.ProductID)
	if err != nil {
		logger.Warn("Could not lock product, retrying next pass", slog.String("error", err.Error()))
		return ""
	}
	defer unlock()

	stepCtx := context.WithoutCancel(ctx)

	// The coordinator may have settled it between listing and locking.
	fresh, err := r.adjRepo.FindStockAdjustmentByID(stepCtx, adj.ID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Failed to re-read stock adjustment", slog.String("error", err.Error()))
		}
		return ""
	}
	if fresh.Status != domain.AdjustmentPending {
		return ""
	}

	if err := r.stock.AdjustStock(stepCtx, fresh.ProductID, fresh.Quantity, fresh.Direction); err != nil {
		abandon := fresh.Attempts+1 >= r.cfg.MaxAttempts
		if recErr := r.adjRepo.RecordAdjustmentFailure(stepCtx, fresh.ID, err.Error(), abandon); recErr != nil {
			logger.Error("Failed to record stock adjustment failure", slog.String("error", recErr.Error()))
		}
		if abandon {
			metrics.ReconcileResults.WithLabelValues(string(domain.AdjustmentAbandoned)).Inc()
			logger.Error("Stock adjustment abandoned, manual reconciliation required",
				slog.Int("attempts", fresh.Attempts+1),
				slog.Int("quantity", fresh.Quantity),
				slog.String("direction", string(fresh.Direction)),
				slog.String("error", err.Error()))
			return domain.AdjustmentAbandoned
		}
		metrics.ReconcileResults.WithLabelValues("failed").Inc()
		logger.Warn("Stock adjustment still failing", slog.Int("attempts", fresh.Attempts+1), slog.String("error", err.Error()))
		return domain.AdjustmentPending
	}

	if err := r.adjRepo.MarkAdjustmentApplied(stepCtx, fresh.ID); err != nil {
		logger.Error("Stock adjustment applied but not marked", slog.String("error", err.Error()))
	}
	metrics.ReconcileResults.WithLabelValues(string(domain.AdjustmentApplied)).Inc()
	logger.Info("Stock adjustment applied by reconciler")
	return domain.AdjustmentApplied
}

// ListAdjustments pages through recorded adjustments, newest first.
func (r *StockReconciler) ListAdjustments(ctx context.Context, status domain.AdjustmentStatus, limit int, nextToken *string) ([]domain.StockAdjustment, *string, error) {
	if status != "" && !status.IsValid() {
		return nil, nil, apperrors.Validation(fmt.Sprintf("unknown adjustment status %q", status))
	}
	if limit <= 0 {
		limit = defaultListAdjustmentsLimit
	}
	if limit > maxListAdjustmentsLimit {
		limit = maxListAdjustmentsLimit
	}

	adjs, next, err := r.adjRepo.ListStockAdjustments(ctx, status, limit, nextToken)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == 400 {
			return nil, nil, apperrors.Validation(appErr.Message)
		}
		return nil, nil, apperrors.Wrap(apperrors.KindStorageFailure, "Error retrieving stock adjustments", err)
	}
	return adjs, next, nil
}
