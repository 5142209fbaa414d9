package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is either a Purchase (stock in) or a Sale (stock out).
type TransactionType string

const (
	Purchase TransactionType = "Purchase"
	Sale     TransactionType = "Sale"
)

// MaxDetailsLength caps the free-text details of a transaction.
const MaxDetailsLength = 1000

// IsValid reports whether t is spelled exactly as one of the known types.
func (t TransactionType) IsValid() bool {
	return t == Purchase || t == Sale
}

// StockDirection is the effect the transaction has on the product's stock.
func (t TransactionType) StockDirection() StockDirection {
	if t == Sale {
		return Decrease
	}
	return Increase
}

// StockDirection is the sign of a stock adjustment.
type StockDirection string

const (
	Increase StockDirection = "Increase"
	Decrease StockDirection = "Decrease"
)

// Reverse returns the opposite direction.
func (d StockDirection) Reverse() StockDirection {
	if d == Increase {
		return Decrease
	}
	return Increase
}

// IsIncrease is the boolean form used on the wire.
func (d StockDirection) IsIncrease() bool {
	return d == Increase
}

// Signed applies the direction to qty.
func (d StockDirection) Signed(qty int) int {
	if d == Decrease {
		return -qty
	}
	return qty
}

// Transaction is one recorded purchase or sale of a product.
type Transaction struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"productId"`
	TransactionDate time.Time       `json:"transactionDate"`
	TransactionType TransactionType `json:"transactionType"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	Details         *string         `json:"details,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// RecomputeTotal sets TotalPrice to Quantity x UnitPrice.
func (t *Transaction) RecomputeTotal() {
	t.TotalPrice = t.UnitPrice.Mul(decimal.NewFromInt(int64(t.Quantity)))
}

// StockEffect is the adjustment this transaction applied to its product.
func (t Transaction) StockEffect() (int, StockDirection) {
	return t.Quantity, t.TransactionType.StockDirection()
}

// TransactionView is a Transaction enriched with a snapshot of its product.
type TransactionView struct {
	Transaction
	ProductName      string
	ProductCategory  string
	CurrentStock     int
	StockSyncPending bool
}

// TransactionFilter selects transactions for listing.
type TransactionFilter struct {
	ProductID       string
	ProductName     string
	TransactionType string
	StartDate       *time.Time
	EndDate         *time.Time
	MinAmount       *decimal.Decimal
	MaxAmount       *decimal.Decimal
	SortBy          string
	SortDirection   SortDirection
	Page            int
	PageSize        int
}
