package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/inventory_management_app/internal/apperrors"
	"github.com/SscSPs/inventory_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/inventory_management_app/internal/core/ports/repositories"
	"github.com/SscSPs/inventory_management_app/internal/models"
	"github.com/SscSPs/inventory_management_app/internal/utils/mapping"
	"github.com/SscSPs/inventory_management_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `id, product_id, transaction_date, transaction_type, quantity, unit_price, total_price, details, created_at`

// transactionSortColumns maps lower-cased sort keys to columns.
var transactionSortColumns = map[string]string{
	"transactiondate": "transaction_date",
	"transactiontype": "transaction_type",
	"quantity":        "quantity",
	"totalprice":      "total_price",
}

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for transaction data.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryWithTx {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.TransactionRepositoryWithTx = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID,
		&t.ProductID,
		&t.TransactionDate,
		&t.TransactionType,
		&t.Quantity,
		&t.UnitPrice,
		&t.TotalPrice,
		&t.Details,
		&t.CreatedAt,
	)
	return t, err
}

// FindTransactionByID retrieves a transaction by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1;`

	modelTxn, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by id %s: %w", transactionID, err)
	}

	domainTxn := mapping.ToDomainTransaction(modelTxn)
	return &domainTxn, nil
}

// buildTransactionWhere renders the WHERE clause and its arguments for a filter.
func buildTransactionWhere(filter domain.TransactionFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}

	if filter.ProductID != "" {
		add("product_id = ?", filter.ProductID)
	}
	if filter.TransactionType != "" {
		add("lower(transaction_type) = lower(?)", filter.TransactionType)
	}
	if filter.StartDate != nil {
		add("transaction_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("transaction_date <= ?", *filter.EndDate)
	}
	if filter.MinAmount != nil {
		add("total_price >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		add("total_price <= ?", *filter.MaxAmount)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// transactionOrderBy falls back to newest transaction date first for unknown keys.
func transactionOrderBy(filter domain.TransactionFilter) string {
	column, ok := transactionSortColumns[strings.ToLower(filter.SortBy)]
	direction := filter.SortDirection
	if !ok {
		column, direction = "transaction_date", domain.SortDesc
	}
	if direction != domain.SortAsc {
		direction = domain.SortDesc
	}
	return fmt.Sprintf(" ORDER BY %s %s, created_at %s, id %s", column, direction, direction, direction)
}

// ListTransactions retrieves one page of transactions and the total number of matches.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int, error) {
	where, args := buildTransactionWhere(filter)

	var total int
	if err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	page := pagination.NewPage(filter.Page, filter.PageSize)
	if total == 0 || page.Offset() >= total {
		return []domain.Transaction{}, total, nil
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions` + where + transactionOrderBy(filter) +
		" LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2) + ";"
	args = append(args, page.Size, page.Offset())

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	modelTxns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Transaction, error) {
		return scanTransaction(row)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan transactions: %w", err)
	}

	return mapping.ToDomainTransactionSlice(modelTxns), total, nil
}

// ListTransactionsByProduct retrieves every transaction of a product, newest transaction date first.
func (r *PgxTransactionRepository) ListTransactionsByProduct(ctx context.Context, productID string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE product_id = $1 ORDER BY transaction_date DESC, created_at DESC;`

	rows, err := r.Pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for product %s: %w", productID, err)
	}
	defer rows.Close()

	modelTxns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Transaction, error) {
		return scanTransaction(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan transactions for product %s: %w", productID, err)
	}

	return mapping.ToDomainTransactionSlice(modelTxns), nil
}

// CreateTransactionWithAdjustment inserts the transaction and its pending adjustment in one database transaction.
func (r *PgxTransactionRepository) CreateTransactionWithAdjustment(ctx context.Context, txn domain.Transaction, adj domain.StockAdjustment) error {
	modelTxn := mapping.ToModelTransaction(txn)
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`

	return r.InTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			modelTxn.ID,
			modelTxn.ProductID,
			modelTxn.TransactionDate,
			modelTxn.TransactionType,
			modelTxn.Quantity,
			modelTxn.UnitPrice,
			modelTxn.TotalPrice,
			modelTxn.Details,
			modelTxn.CreatedAt,
		)
		if err != nil {
			return apperrors.NewAppError(500, "failed to insert transaction "+modelTxn.ID, err)
		}
		return insertStockAdjustment(ctx, tx, adj)
	})
}

// UpdateTransactionWithAdjustment updates the editable fields and inserts the pending adjustment in one database transaction.
func (r *PgxTransactionRepository) UpdateTransactionWithAdjustment(ctx context.Context, txn domain.Transaction, adj domain.StockAdjustment) error {
	modelTxn := mapping.ToModelTransaction(txn)
	query := `
		UPDATE transactions
		SET transaction_date = $1, transaction_type = $2, quantity = $3, unit_price = $4, total_price = $5, details = $6
		WHERE id = $7;
	`

	return r.InTx(ctx, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, query,
			modelTxn.TransactionDate,
			modelTxn.TransactionType,
			modelTxn.Quantity,
			modelTxn.UnitPrice,
			modelTxn.TotalPrice,
			modelTxn.Details,
			modelTxn.ID,
		)
		if err != nil {
			return apperrors.NewAppError(500, "failed to update transaction "+modelTxn.ID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
		return insertStockAdjustment(ctx, tx, adj)
	})
}

// DeleteTransactionWithAdjustment removes the transaction and records the pending reversal in one database transaction.
func (r *PgxTransactionRepository) DeleteTransactionWithAdjustment(ctx context.Context, transactionID string, adj domain.StockAdjustment) error {
	return r.InTx(ctx, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, `DELETE FROM transactions WHERE id = $1;`, transactionID)
		if err != nil {
			return apperrors.NewAppError(500, "failed to delete transaction "+transactionID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
		return insertStockAdjustment(ctx, tx, adj)
	})
}

// RevertTransactionCreate deletes a freshly created transaction together with its pending adjustment.
func (r *PgxTransactionRepository) RevertTransactionCreate(ctx context.Context, transactionID, adjustmentID string) error {
	return r.InTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM stock_adjustments WHERE id = $1;`, adjustmentID); err != nil {
			return apperrors.NewAppError(500, "failed to delete stock adjustment "+adjustmentID, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE id = $1;`, transactionID); err != nil {
			return apperrors.NewAppError(500, "failed to delete transaction "+transactionID, err)
		}
		return nil
	})
}
