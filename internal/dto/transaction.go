package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/inventory_management_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest is the body of POST /transactions.
type CreateTransactionRequest struct {
	ProductID       string          `json:"productId" binding:"required,uuid"`
	TransactionDate *time.Time      `json:"transactionDate,omitempty"`
	TransactionType string          `json:"transactionType" binding:"required,oneof=Purchase Sale"`
	Quantity        int             `json:"quantity" binding:"gt=0"`
	UnitPrice       decimal.Decimal `json:"unitPrice" binding:"dgt0"`
	Details         *string         `json:"details,omitempty" binding:"omitempty,max=1000"`
}

// UpdateTransactionRequest is the body of PUT /transactions/{id}. The product cannot change.
type UpdateTransactionRequest struct {
	TransactionDate *time.Time      `json:"transactionDate,omitempty"`
	TransactionType string          `json:"transactionType" binding:"required,oneof=Purchase Sale"`
	Quantity        int             `json:"quantity" binding:"gt=0"`
	UnitPrice       decimal.Decimal `json:"unitPrice" binding:"dgt0"`
	Details         *string         `json:"details,omitempty" binding:"omitempty,max=1000"`
}

// TransactionResponse is a transaction with the product snapshot taken when it was served.
type TransactionResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"productId"`
	TransactionDate  time.Time       `json:"transactionDate"`
	TransactionType  string          `json:"transactionType"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	Details          *string         `json:"details"`
	CreatedAt        time.Time       `json:"createdAt"`
	ProductName      string          `json:"productName"`
	ProductCategory  string          `json:"productCategory"`
	CurrentStock     int             `json:"currentStock"`
	StockSyncPending bool            `json:"stockSyncPending,omitempty"`
}

// ListTransactionsParams are the query parameters of GET /transactions.
type ListTransactionsParams struct {
	ProductID string `form:"productId" binding:"omitempty,uuid"`
	// ProductName is accepted for client compatibility. Names live in the product service, so it does not narrow the query.
	ProductName     string `form:"productName"`
	TransactionType string `form:"transactionType"`
	StartDate       string `form:"startDate"`
	EndDate         string `form:"endDate"`
	MinAmount       string `form:"minAmount"`
	MaxAmount       string `form:"maxAmount"`
	Page            int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize        int    `form:"pageSize,default=10" binding:"omitempty,min=1,max=1000"`
	SortBy          string `form:"sortBy,default=transactionDate"`
	SortDescending  bool   `form:"sortDescending,default=true"`
}

// ToFilter parses the raw query values into a domain filter.
func (p ListTransactionsParams) ToFilter() (domain.TransactionFilter, error) {
	filter := domain.TransactionFilter{
		ProductID:       p.ProductID,
		TransactionType: strings.TrimSpace(p.TransactionType),
		SortBy:          p.SortBy,
		SortDirection:   domain.SortDirectionFromBool(p.SortDescending),
		Page:            p.Page,
		PageSize:        p.PageSize,
	}

	var err error
	if filter.StartDate, err = ParseFilterDate(p.StartDate, false); err != nil {
		return filter, fmt.Errorf("startDate: %w", err)
	}
	if filter.EndDate, err = ParseFilterDate(p.EndDate, true); err != nil {
		return filter, fmt.Errorf("endDate: %w", err)
	}
	if filter.MinAmount, err = parseOptionalDecimal(p.MinAmount); err != nil {
		return filter, fmt.Errorf("minAmount: %w", err)
	}
	if filter.MaxAmount, err = parseOptionalDecimal(p.MaxAmount); err != nil {
		return filter, fmt.Errorf("maxAmount: %w", err)
	}
	return filter, nil
}

// ToTransactionResponse converts a domain.TransactionView to TransactionResponse DTO.
func ToTransactionResponse(v domain.TransactionView) TransactionResponse {
	return TransactionResponse{
		ID:               v.ID,
		ProductID:        v.ProductID,
		TransactionDate:  v.TransactionDate,
		TransactionType:  string(v.TransactionType),
		Quantity:         v.Quantity,
		UnitPrice:        v.UnitPrice,
		TotalPrice:       v.TotalPrice,
		Details:          v.Details,
		CreatedAt:        v.CreatedAt,
		ProductName:      v.ProductName,
		ProductCategory:  v.ProductCategory,
		CurrentStock:     v.CurrentStock,
		StockSyncPending: v.StockSyncPending,
	}
}

// ToTransactionResponses converts a slice of domain.TransactionView to []TransactionResponse.
func ToTransactionResponses(views []domain.TransactionView) []TransactionResponse {
	responses := make([]TransactionResponse, len(views))
	for i, v := range views {
		responses[i] = ToTransactionResponse(v)
	}
	return responses
}
