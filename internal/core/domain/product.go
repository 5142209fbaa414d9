package domain

import (
	"github.com/shopspring/decimal"
)

// LowStockThreshold is the stock count under which a product is flagged.
const LowStockThreshold = 5

// Stock status labels, as shown on the product list.
const (
	StockStatusOut = "Out of Stock"
	StockStatusLow = "Low Stock"
	StockStatusIn  = "In Stock"
)

// Product is an item whose stock count is owned by the product service.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Category    string          `json:"category"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	IsActive    bool            `json:"isActive"`
	AuditFields
}

// StockStatus derives the display label from the stock count.
func (p Product) StockStatus() string {
	switch {
	case p.Stock <= 0:
		return StockStatusOut
	case p.Stock < LowStockThreshold:
		return StockStatusLow
	default:
		return StockStatusIn
	}
}

// Availability is the answer of a stock check.
type Availability struct {
	Available bool
	Reason    string
}

// ProductFilter selects products for listing.
type ProductFilter struct {
	Name          string
	Category      string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	IsActive      *bool
	SortBy        string
	SortDirection SortDirection
	Page          int
	PageSize      int
}
