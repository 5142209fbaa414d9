package models

import "github.com/shopspring/decimal"

// Product is a row of the products table.
type Product struct {
	ID          string          `db:"id"`
	Name        string          `db:"name"`
	Description *string         `db:"description"`
	Category    string          `db:"category"`
	ImageURL    *string         `db:"image_url"`
	Price       decimal.Decimal `db:"price"`
	Stock       int             `db:"stock"`
	IsActive    bool            `db:"is_active"`
	AuditFields
}
