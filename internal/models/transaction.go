package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of the transactions table.
type Transaction struct {
	ID              string          `db:"id"`
	ProductID       string          `db:"product_id"`
	TransactionDate time.Time       `db:"transaction_date"`
	TransactionType string          `db:"transaction_type"`
	Quantity        int             `db:"quantity"`
	UnitPrice       decimal.Decimal `db:"unit_price"`
	TotalPrice      decimal.Decimal `db:"total_price"`
	Details         *string         `db:"details"`
	CreatedAt       time.Time       `db:"created_at"`
}
