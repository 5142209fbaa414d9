package repositories

import (
	"context"

	"github.com/SscSPs/inventory_management_app/internal/core/domain"
)

// ProductReader defines read operations for product data
type ProductReader interface {
	// FindProductByID retrieves a product, or apperrors.ErrNotFound.
	FindProductByID(ctx context.Context, productID string) (*domain.Product, error)

	// ListProducts returns one page of products matching the filter and the total match count.
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error)
}

// ProductWriter defines write operations for product data
type ProductWriter interface {
	// SaveProduct inserts a new product.
	SaveProduct(ctx context.Context, product domain.Product) error

	// UpdateProduct overwrites the editable fields of a product.
	UpdateProduct(ctx context.Context, product domain.Product) error

	// DeactivateProduct soft-deletes a product.
	DeactivateProduct(ctx context.Context, productID string) error

	// AdjustProductStock adds delta to the stock in a single statement that refuses to go below zero.
	// It returns the resulting stock on success, and the unchanged stock together with
	// apperrors.ErrInsufficientStock when the decrease is refused.
	AdjustProductStock(ctx context.Context, productID string, delta int) (int, error)
}

// ProductRepositoryFacade combines all product-related repository interfaces
type ProductRepositoryFacade interface {
	ProductReader
	ProductWriter
}
