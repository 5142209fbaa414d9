package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/inventory_management_app/internal/apperrors"
	"github.com/SscSPs/inventory_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/inventory_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/inventory_management_app/internal/core/ports/services"
	"github.com/SscSPs/inventory_management_app/internal/dto"
)

// MsgStockAvailable is the stock check message when enough units are on hand.
const MsgStockAvailable = "Stock is available"

// productService owns product records and their stock counts.
type productService struct {
	BaseService
	productRepo portsrepo.ProductRepositoryFacade
	now         func() time.Time
}

// NewProductService creates the product service.
func NewProductService(productRepo portsrepo.ProductRepositoryFacade) portssvc.ProductSvcFacade {
	return &productService{
		productRepo: productRepo,
		now:         time.Now,
	}
}

var _ portssvc.ProductSvcFacade = (*productService)(nil)

func insufficientStockMessage(available, required int) string {
	return fmt.Sprintf("Insufficient stock. Available: %d, Required: %d", available, required)
}

func productNotFound() error {
	return apperrors.New(apperrors.KindProductNotFound, apperrors.MsgProductNotFound)
}

// GetProduct retrieves a product by id, inactive ones included.
func (s *productService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.productRepo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, productNotFound()
		}
		s.LogError(ctx, err, "Failed to retrieve product", slog.String("product_id", productID))
		return nil, apperrors.Wrap(apperrors.KindStorageFailure, "Error retrieving product", err)
	}
	return product, nil
}

// ListProducts returns one page of products and the total match count.
func (s *productService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	products, total, err := s.productRepo.ListProducts(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list products")
		return nil, 0, apperrors.Wrap(apperrors.KindStorageFailure, "Error retrieving products", err)
	}
	return products, total, nil
}

// CheckStock reports whether requiredQty units are on hand.
func (s *productService) CheckStock(ctx context.Context, productID string, requiredQty int) (domain.Availability, error) {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return domain.Availability{}, err
	}
	if product.Stock >= requiredQty {
		return domain.Availability{Available: true, Reason: MsgStockAvailable}, nil
	}
	return domain.Availability{Available: false, Reason: insufficientStockMessage(product.Stock, requiredQty)}, nil
}

// CreateProduct persists a new active product.
func (s *productService) CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*domain.Product, error) {
	if err := validateProductInput(req.Name, req.Category, req.Price, req.Stock); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	product := domain.Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    strings.TrimSpace(req.Category),
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		Stock:       req.Stock,
		IsActive:    true,
		AuditFields: domain.AuditFields{CreatedAt: now, UpdatedAt: now},
	}

	if err := s.productRepo.SaveProduct(ctx, product); err != nil {
		s.LogError(ctx, err, "Failed to create product", slog.String("name", product.Name))
		return nil, apperrors.Wrap(apperrors.KindStorageFailure, "Error creating product", err)
	}
	s.LogInfo(ctx, "Product created", slog.String("product_id", product.ID))
	return &product, nil
}

// UpdateProduct overwrites the editable fields. Stock is set as given; counted adjustments go through UpdateStock.
func (s *productService) UpdateProduct(ctx context.Context, productID string, req dto.UpdateProductRequest) (*domain.Product, error) {
	if err := validateProductInput(req.Name, req.Category, req.Price, req.Stock); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(req.Name)
	product.Description = req.Description
	product.Category = strings.TrimSpace(req.Category)
	product.ImageURL = req.ImageURL
	product.Price = req.Price
	product.Stock = req.Stock
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	product.UpdatedAt = s.now().UTC()

	if err := s.productRepo.UpdateProduct(ctx, *product); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, productNotFound()
		}
		s.LogError(ctx, err, "Failed to update product", slog.String("product_id", productID))
		return nil, apperrors.Wrap(apperrors.KindStorageFailure, "Error updating product", err)
	}
	return product, nil
}

// DeleteProduct deactivates the product.
func (s *productService) DeleteProduct(ctx context.Context, productID string) error {
	if err := s.productRepo.DeactivateProduct(ctx, productID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return productNotFound()
		}
		s.LogError(ctx, err, "Failed to delete product", slog.String("product_id", productID))
		return apperrors.Wrap(apperrors.KindStorageFailure, "Error deleting product", err)
	}
	s.LogInfo(ctx, "Product deactivated", slog.String("product_id", productID))
	return nil
}

// UpdateStock moves the stock by qty and returns the new count.
func (s *productService) UpdateStock(ctx context.Context, productID string, qty int, isIncrease bool) (int, error) {
	if qty <= 0 {
		return 0, apperrors.Validation("Quantity must be greater than 0")
	}
	delta := qty
	if !isIncrease {
		delta = -qty
	}

	stock, err := s.productRepo.AdjustProductStock(ctx, productID, delta)
	switch {
	case err == nil:
		s.LogDebug(ctx, "Stock updated", slog.String("product_id", productID), slog.Int("delta", delta), slog.Int("stock", stock))
		return stock, nil
	case errors.Is(err, apperrors.ErrNotFound):
		return 0, productNotFound()
	case errors.Is(err, apperrors.ErrInsufficientStock):
		return stock, apperrors.New(apperrors.KindInsufficientStock, insufficientStockMessage(stock, qty))
	default:
		s.LogError(ctx, err, "Failed to update stock", slog.String("product_id", productID), slog.Int("delta", delta))
		return 0, apperrors.Wrap(apperrors.KindStorageFailure, "Error updating stock", err)
	}
}

func validateProductInput(name, category string, price decimal.Decimal, stock int) error {
	var problems []string
	if strings.TrimSpace(name) == "" {
		problems = append(problems, "Name is required")
	}
	if strings.TrimSpace(category) == "" {
		problems = append(problems, "Category is required")
	}
	switch {
	case price.IsNegative():
		problems = append(problems, "Price cannot be negative")
	case !domain.FitsPriceScale(price):
		problems = append(problems, fmt.Sprintf("Price cannot have more than %d decimal places", domain.PriceScale))
	case price.GreaterThan(domain.MaxUnitPrice):
		problems = append(problems, fmt.Sprintf("Price cannot exceed %s", domain.MaxUnitPrice))
	}
	if stock < 0 {
		problems = append(problems, "Stock cannot be negative")
	}
	if len(problems) > 0 {
		return apperrors.Validation(problems...)
	}
	return nil
}
