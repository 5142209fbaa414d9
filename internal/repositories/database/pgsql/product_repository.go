package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
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

const productColumns = `id, name, description, category, image_url, price, stock, is_active, created_at, updated_at`

var productSortColumns = map[string]string{
	"name":     "name",
	"price":    "price",
	"stock":    "stock",
	"category": "category",
}

type PgxProductRepository struct {
	BaseRepository
}

// newPgxProductRepository creates a new repository for product data.
func newPgxProductRepository(pool *pgxpool.Pool) portsrepo.ProductRepositoryFacade {
	return &PgxProductRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.ProductRepositoryFacade = (*PgxProductRepository)(nil)

func scanProduct(row pgx.Row) (models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Category,
		&p.ImageURL,
		&p.Price,
		&p.Stock,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

// SaveProduct inserts a new product.
func (r *PgxProductRepository) SaveProduct(ctx context.Context, product domain.Product) error {
	m := mapping.ToModelProduct(product)
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ID,
		m.Name,
		m.Description,
		m.Category,
		m.ImageURL,
		m.Price,
		m.Stock,
		m.IsActive,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save product %s: %w", m.ID, err)
	}
	return nil
}

// FindProductByID retrieves a product by its ID, active or not.
func (r *PgxProductRepository) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1;`
	m, err := scanProduct(r.Pool.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product by id %s: %w", productID, err)
	}
	p := mapping.ToDomainProduct(m)
	return &p, nil
}

// ListProducts retrieves one page of products and the total number of matches.
func (r *PgxProductRepository) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if filter.Name != "" {
		add("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Category != "" {
		add("category ILIKE ?", "%"+filter.Category+"%")
	}
	if filter.MinPrice != nil {
		add("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("price <= ?", *filter.MaxPrice)
	}
	if filter.IsActive != nil {
		add("is_active = ?", *filter.IsActive)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	page := pagination.NewPage(filter.Page, filter.PageSize)
	if total == 0 || page.Offset() >= total {
		return []domain.Product{}, total, nil
	}

	column, ok := productSortColumns[strings.ToLower(filter.SortBy)]
	direction := filter.SortDirection
	if !ok {
		column, direction = "name", domain.SortAsc
	}
	if direction != domain.SortDesc {
		direction = domain.SortAsc
	}

	query := `SELECT ` + productColumns + ` FROM products` + where +
		fmt.Sprintf(" ORDER BY %s %s, id ASC", column, direction) +
		" LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2) + ";"
	args = append(args, page.Size, page.Offset())

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	modelProducts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Product, error) {
		return scanProduct(row)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan products: %w", err)
	}
	return mapping.ToDomainProductSlice(modelProducts), total, nil
}

// UpdateProduct overwrites the editable fields of a product.
func (r *PgxProductRepository) UpdateProduct(ctx context.Context, product domain.Product) error {
	m := mapping.ToModelProduct(product)
	query := `
		UPDATE products
		SET name = $1, description = $2, category = $3, image_url = $4, price = $5, stock = $6, is_active = $7, updated_at = $8
		WHERE id = $9;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.Name,
		m.Description,
		m.Category,
		m.ImageURL,
		m.Price,
		m.Stock,
		m.IsActive,
		m.UpdatedAt,
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product %s: %w", m.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateProduct soft-deletes a product.
func (r *PgxProductRepository) DeactivateProduct(ctx context.Context, productID string) error {
	query := `UPDATE products SET is_active = FALSE, updated_at = $1 WHERE id = $2;`
	cmdTag, err := r.Pool.Exec(ctx, query, time.Now().UTC(), productID)
	if err != nil {
		return fmt.Errorf("failed to deactivate product %s: %w", productID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// AdjustProductStock moves the stock by delta in one statement. The WHERE guard
// keeps concurrent decreases from taking the count below zero.
func (r *PgxProductRepository) AdjustProductStock(ctx context.Context, productID string, delta int) (int, error) {
	query := `
		UPDATE products
		SET stock = stock + $1, updated_at = $2
		WHERE id = $3 AND stock + $1 >= 0
		RETURNING stock;
	`
	var newStock int
	err := r.Pool.QueryRow(ctx, query, delta, time.Now().UTC(), productID).Scan(&newStock)
	if err == nil {
		return newStock, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to adjust stock of product %s: %w", productID, err)
	}

	// Nothing updated: either the product is missing or the guard refused the decrease.
	var current int
	err = r.Pool.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1;`, productID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrNotFound
		}
		return 0, fmt.Errorf("failed to read stock of product %s: %w", productID, err)
	}
	return current, apperrors.ErrInsufficientStock
}
