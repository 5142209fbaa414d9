package models

// StockAdjustment is a row of the stock_adjustments table.
type StockAdjustment struct {
	ID            string  `db:"id"`
	TransactionID *string `db:"transaction_id"`
	ProductID     string  `db:"product_id"`
	Quantity      int     `db:"quantity"`
	Direction     string  `db:"direction"`
	Operation     string  `db:"operation"`
	Status        string  `db:"status"`
	Attempts      int     `db:"attempts"`
	LastError     *string `db:"last_error"`
	AuditFields
}
