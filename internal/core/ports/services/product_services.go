package services

import (
	"context"

	"github.com/SscSPs/inventory_management_app/internal/core/domain"
	"github.com/SscSPs/inventory_management_app/internal/dto"
)

// ProductReaderSvc defines read operations for products
type ProductReaderSvc interface {
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error)

	// CheckStock reports whether requiredQty units are on hand.
	CheckStock(ctx context.Context, productID string, requiredQty int) (domain.Availability, error)
}

// ProductWriterSvc defines write operations for products
type ProductWriterSvc interface {
	CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*domain.Product, error)
	UpdateProduct(ctx context.Context, productID string, req dto.UpdateProductRequest) (*domain.Product, error)

	// DeleteProduct deactivates the product; its row and stock remain.
	DeleteProduct(ctx context.Context, productID string) error

	// UpdateStock moves the stock by qty, refusing to go below zero.
	UpdateStock(ctx context.Context, productID string, qty int, isIncrease bool) (int, error)
}

// ProductSvcFacade combines all product-related service interfaces
type ProductSvcFacade interface {
	ProductReaderSvc
	ProductWriterSvc
}
