package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields holds the timestamps shared by persisted entities.
type AuditFields struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SortDirection controls list ordering.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// SortDirectionFromBool maps a "sortDescending" flag to a SortDirection.
func SortDirectionFromBool(descending bool) SortDirection {
	if descending {
		return SortDesc
	}
	return SortAsc
}

// PriceScale is the number of decimal places stored for money amounts.
const PriceScale = 2

var (
	// MaxUnitPrice is the largest unit or product price storage holds.
	MaxUnitPrice = decimal.RequireFromString("99999999.99")
	// MaxTotalPrice is the largest transaction total storage holds.
	MaxTotalPrice = decimal.RequireFromString("9999999999.99")
)

// FitsPriceScale reports whether d has no digits past PriceScale, so storing it loses nothing.
func FitsPriceScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(PriceScale))
}
