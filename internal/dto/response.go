package dto

import "github.com/SscSPs/inventory_management_app/internal/utils/pagination"

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    any      `json:"data"`
	Errors  []string `json:"errors"`
}

// OK builds a successful envelope.
func OK(message string, data any) APIResponse {
	return APIResponse{Success: true, Message: message, Data: data, Errors: []string{}}
}

// Fail builds a failed envelope. Errors is never null on the wire.
func Fail(message string, errs ...string) APIResponse {
	if errs == nil {
		errs = []string{}
	}
	return APIResponse{Success: false, Message: message, Errors: errs}
}

// PagedResult is one page of a listing.
type PagedResult[T any] struct {
	Items           []T  `json:"items"`
	TotalItems      int  `json:"totalItems"`
	CurrentPage     int  `json:"currentPage"`
	PageSize        int  `json:"pageSize"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// NewPagedResult wraps items with the page metadata derived from the total count.
func NewPagedResult[T any](items []T, totalItems int, page pagination.Page) PagedResult[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := page.TotalPages(totalItems)
	return PagedResult[T]{
		Items:           items,
		TotalItems:      totalItems,
		CurrentPage:     page.Number,
		PageSize:        page.Size,
		TotalPages:      totalPages,
		HasNextPage:     page.Number < totalPages,
		HasPreviousPage: page.Number > 1,
	}
}
