package dto

import (
	"time"

	"github.com/SscSPs/inventory_management_app/internal/core/domain"
)

// ListStockAdjustmentsParams are the query parameters of GET /stock-adjustments.
type ListStockAdjustmentsParams struct {
	Status    string  `form:"status" binding:"omitempty,oneof=pending applied abandoned"`
	Limit     int     `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// StockAdjustmentResponse describes one recorded remote stock change.
type StockAdjustmentResponse struct {
	ID            string    `json:"id"`
	TransactionID *string   `json:"transactionId"`
	ProductID     string    `json:"productId"`
	Quantity      int       `json:"quantity"`
	Direction     string    `json:"direction"`
	Operation     string    `json:"operation"`
	Status        string    `json:"status"`
	Attempts      int       `json:"attempts"`
	LastError     *string   `json:"lastError"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ListStockAdjustmentsResponse is one cursor page of adjustments.
type ListStockAdjustmentsResponse struct {
	Adjustments []StockAdjustmentResponse `json:"adjustments"`
	NextToken   *string                   `json:"nextToken,omitempty"`
}

// ReconcileReportResponse summarizes one reconciliation pass.
type ReconcileReportResponse struct {
	Examined  int `json:"examined"`
	Applied   int `json:"applied"`
	Failed    int `json:"failed"`
	Abandoned int `json:"abandoned"`
}

// ToStockAdjustmentResponse converts a domain.StockAdjustment to its DTO.
func ToStockAdjustmentResponse(a domain.StockAdjustment) StockAdjustmentResponse {
	return StockAdjustmentResponse{
		ID:            a.ID,
		TransactionID: a.TransactionID,
		ProductID:     a.ProductID,
		Quantity:      a.Quantity,
		Direction:     string(a.Direction),
		Operation:     string(a.Operation),
		Status:        string(a.Status),
		Attempts:      a.Attempts,
		LastError:     a.LastError,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// ToListStockAdjustmentsResponse converts a page of adjustments to its DTO.
func ToListStockAdjustmentsResponse(adjs []domain.StockAdjustment, nextToken *string) ListStockAdjustmentsResponse {
	out := make([]StockAdjustmentResponse, len(adjs))
	for i, a := range adjs {
		out[i] = ToStockAdjustmentResponse(a)
	}
	return ListStockAdjustmentsResponse{Adjustments: out, NextToken: nextToken}
}
