package dto

import (
	"fmt"
	"time"

	"github.com/SscSPs/inventory_management_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateProductRequest is the body of POST /products.
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,max=255"`
	Description *string         `json:"description,omitempty"`
	Category    string          `json:"category" binding:"required,max=100"`
	ImageURL    *string         `json:"imageUrl,omitempty" binding:"omitempty,max=500"`
	Price       decimal.Decimal `json:"price" binding:"dgte0"`
	Stock       int             `json:"stock" binding:"gte=0"`
}

// UpdateProductRequest is the body of PUT /products/{id}.
type UpdateProductRequest struct {
	Name        string          `json:"name" binding:"required,max=255"`
	Description *string         `json:"description,omitempty"`
	Category    string          `json:"category" binding:"required,max=100"`
	ImageURL    *string         `json:"imageUrl,omitempty" binding:"omitempty,max=500"`
	Price       decimal.Decimal `json:"price" binding:"dgte0"`
	Stock       int             `json:"stock" binding:"gte=0"`
	IsActive    *bool           `json:"isActive,omitempty"`
}

// UpdateStockRequest is the body of POST /products/{id}/stock.
type UpdateStockRequest struct {
	Quantity   int  `json:"quantity" binding:"gt=0"`
	IsIncrease bool `json:"isIncrease"`
}

// StockCheckParams are the query parameters of GET /products/{id}/stock-check.
type StockCheckParams struct {
	RequiredQuantity int `form:"requiredQuantity" binding:"gte=0"`
}

// ProductResponse is the product as served by the product service.
type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Category    string          `json:"category"`
	ImageURL    *string         `json:"imageUrl"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	IsActive    bool            `json:"isActive"`
	StockStatus string          `json:"stockStatus"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ListProductsParams are the query parameters of GET /products.
type ListProductsParams struct {
	Name           string `form:"name"`
	Category       string `form:"category"`
	MinPrice       string `form:"minPrice"`
	MaxPrice       string `form:"maxPrice"`
	IsActive       string `form:"isActive"`
	Page           int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize       int    `form:"pageSize,default=10" binding:"omitempty,min=1,max=1000"`
	SortBy         string `form:"sortBy,default=name"`
	SortDescending bool   `form:"sortDescending"`
}

// ToFilter parses the raw query values into a domain filter.
func (p ListProductsParams) ToFilter() (domain.ProductFilter, error) {
	filter := domain.ProductFilter{
		Name:          p.Name,
		Category:      p.Category,
		SortBy:        p.SortBy,
		SortDirection: domain.SortDirectionFromBool(p.SortDescending),
		Page:          p.Page,
		PageSize:      p.PageSize,
	}
	var err error
	if filter.MinPrice, err = parseOptionalDecimal(p.MinPrice); err != nil {
		return filter, fmt.Errorf("minPrice: %w", err)
	}
	if filter.MaxPrice, err = parseOptionalDecimal(p.MaxPrice); err != nil {
		return filter, fmt.Errorf("maxPrice: %w", err)
	}
	if filter.IsActive, err = parseOptionalBool(p.IsActive); err != nil {
		return filter, fmt.Errorf("isActive: %w", err)
	}
	return filter, nil
}

// ToProductResponse converts a domain.Product to ProductResponse DTO.
func ToProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		Price:       p.Price,
		Stock:       p.Stock,
		IsActive:    p.IsActive,
		StockStatus: p.StockStatus(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToDomainProduct converts the wire form back into a domain.Product.
func (r ProductResponse) ToDomainProduct() domain.Product {
	return domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
		Price:       r.Price,
		Stock:       r.Stock,
		IsActive:    r.IsActive,
		AuditFields: domain.AuditFields{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
	}
}

// ToProductResponses converts a slice of domain.Product to []ProductResponse.
func ToProductResponses(products []domain.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}
