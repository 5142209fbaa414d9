package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/SscSPs/inventory_management_app/internal/apperrors"
	"github.com/SscSPs/inventory_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/inventory_management_app/internal/core/ports/repositories"
	"github.com/SscSPs/inventory_management_app/internal/models"
	"github.com/SscSPs/inventory_management_app/internal/utils/mapping"
	"github.com/SscSPs/inventory_management_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const stockAdjustmentColumns = `id, transaction_id, product_id, quantity, direction, operation, status, attempts, last_error, created_at, updated_at`

type PgxStockAdjustmentRepository struct {
	BaseRepository
}

// newPgxStockAdjustmentRepository creates a new repository for stock adjustments.
func newPgxStockAdjustmentRepository(pool *pgxpool.Pool) portsrepo.StockAdjustmentRepositoryFacade {
	return &PgxStockAdjustmentRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.StockAdjustmentRepositoryFacade = (*PgxStockAdjustmentRepository)(nil)

// insertStockAdjustment is shared with the transaction repository so the insert can join its database transaction.
func insertStockAdjustment(ctx context.Context, db execer, adj domain.StockAdjustment) error {
	m := mapping.ToModelStockAdjustment(adj)
	query := `
		INSERT INTO stock_adjustments (` + stockAdjustmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := db.Exec(ctx, query,
		m.ID,
		m.TransactionID,
		m.ProductID,
		m.Quantity,
		m.Direction,
		m.Operation,
		m.Status,
		m.Attempts,
		m.LastError,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert stock adjustment "+m.ID, err)
	}
	return nil
}

func scanStockAdjustment(row pgx.Row) (models.StockAdjustment, error) {
	var a models.StockAdjustment
	err := row.Scan(
		&a.ID,
		&a.TransactionID,
		&a.ProductID,
		&a.Quantity,
		&a.Direction,
		&a.Operation,
		&a.Status,
		&a.Attempts,
		&a.LastError,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func collectStockAdjustments(rows pgx.Rows) ([]models.StockAdjustment, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.StockAdjustment, error) {
		return scanStockAdjustment(row)
	})
}

// FindStockAdjustmentByID retrieves one adjustment.
func (r *PgxStockAdjustmentRepository) FindStockAdjustmentByID(ctx context.Context, adjustmentID string) (*domain.StockAdjustment, error) {
	query := `SELECT ` + stockAdjustmentColumns + ` FROM stock_adjustments WHERE id = $1;`
	m, err := scanStockAdjustment(r.Pool.QueryRow(ctx, query, adjustmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query stock adjustment %s: %w", adjustmentID, err)
	}
	adj := mapping.ToDomainStockAdjustment(m)
	return &adj, nil
}

// SaveStockAdjustment inserts a standalone adjustment.
func (r *PgxStockAdjustmentRepository) SaveStockAdjustment(ctx context.Context, adj domain.StockAdjustment) error {
	return insertStockAdjustment(ctx, r.Pool, adj)
}

// MarkAdjustmentApplied flags the adjustment as applied.
func (r *PgxStockAdjustmentRepository) MarkAdjustmentApplied(ctx context.Context, adjustmentID string) error {
	query := `UPDATE stock_adjustments SET status = $1, updated_at = $2 WHERE id = $3;`
	cmdTag, err := r.Pool.Exec(ctx, query, string(domain.AdjustmentApplied), time.Now().UTC(), adjustmentID)
	if err != nil {
		return fmt.Errorf("failed to mark stock adjustment %s applied: %w", adjustmentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// RecordAdjustmentFailure bumps the attempt counter, stores the error and optionally abandons the adjustment.
func (r *PgxStockAdjustmentRepository) RecordAdjustmentFailure(ctx context.Context, adjustmentID string, lastError string, abandon bool) error {
	status := domain.AdjustmentPending
	if abandon {
		status = domain.AdjustmentAbandoned
	}
	query := `
		UPDATE stock_adjustments
		SET attempts = attempts + 1, last_error = $1, status = $2, updated_at = $3
		WHERE id = $4;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, lastError, string(status), time.Now().UTC(), adjustmentID)
	if err != nil {
		return fmt.Errorf("failed to record failure for stock adjustment %s: %w", adjustmentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListDueAdjustments returns pending adjustments created before cutoff, oldest first.
func (r *PgxStockAdjustmentRepository) ListDueAdjustments(ctx context.Context, cutoff time.Time, limit int) ([]domain.StockAdjustment, error) {
	query := `
		SELECT ` + stockAdjustmentColumns + `
		FROM stock_adjustments
		WHERE status = $1 AND created_at <= $2
		ORDER BY created_at ASC, id ASC
		LIMIT $3;
	`
	rows, err := r.Pool.Query(ctx, query, string(domain.AdjustmentPending), cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query due stock adjustments: %w", err)
	}
	defer rows.Close()

	modelAdjs, err := collectStockAdjustments(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan due stock adjustments: %w", err)
	}
	return mapping.ToDomainStockAdjustmentSlice(modelAdjs), nil
}

// ListPendingAdjustmentsByProduct returns the product's pending adjustments, oldest first.
func (r *PgxStockAdjustmentRepository) ListPendingAdjustmentsByProduct(ctx context.Context, productID string) ([]domain.StockAdjustment, error) {
	query := `
		SELECT ` + stockAdjustmentColumns + `
		FROM stock_adjustments
		WHERE status = $1 AND product_id = $2
		ORDER BY created_at ASC, id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, string(domain.AdjustmentPending), productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending stock adjustments for product %s: %w", productID, err)
	}
	defer rows.Close()

	modelAdjs, err := collectStockAdjustments(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan pending stock adjustments for product %s: %w", productID, err)
	}
	return mapping.ToDomainStockAdjustmentSlice(modelAdjs), nil
}

// ListStockAdjustments pages through adjustments, newest first, with a created_at|id cursor.
func (r *PgxStockAdjustmentRepository) ListStockAdjustments(ctx context.Context, status domain.AdjustmentStatus, limit int, nextToken *string) ([]domain.StockAdjustment, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// One extra row tells us whether a next page exists.
	fetchLimit := limit + 1

	query := `SELECT ` + stockAdjustmentColumns + ` FROM stock_adjustments WHERE TRUE`
	var args []any
	if status != "" {
		args = append(args, string(status))
		query += " AND status = $" + strconv.Itoa(len(args))
	}
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastCreatedAt, lastID)
		query += " AND (created_at, id) < ($" + strconv.Itoa(len(args)-1) + ", $" + strconv.Itoa(len(args)) + ")"
	}
	args = append(args, fetchLimit)
	query += " ORDER BY created_at DESC, id DESC LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query stock adjustments: %w", err)
	}
	defer rows.Close()

	modelAdjs, err := collectStockAdjustments(rows)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan stock adjustments: %w", err)
	}

	var nextTokenVal *string
	if len(modelAdjs) > limit {
		last := modelAdjs[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.ID)
		nextTokenVal = &token
		modelAdjs = modelAdjs[:limit]
	}

	return mapping.ToDomainStockAdjustmentSlice(modelAdjs), nextTokenVal, nil
}

// CountPendingAdjustments returns the size of the pending set.
func (r *PgxStockAdjustmentRepository) CountPendingAdjustments(ctx context.Context) (int, error) {
	var n int
	err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM stock_adjustments WHERE status = $1;`, string(domain.AdjustmentPending)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending stock adjustments: %w", err)
	}
	return n, nil
}
