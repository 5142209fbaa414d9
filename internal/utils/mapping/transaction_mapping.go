package mapping

import (
	"github.com/SscSPs/inventory_management_app/internal/core/domain"
	"github.com/SscSPs/inventory_management_app/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		ID:              d.ID,
		ProductID:       d.ProductID,
		TransactionDate: d.TransactionDate,
		TransactionType: string(d.TransactionType),
		Quantity:        d.Quantity,
		UnitPrice:       d.UnitPrice,
		TotalPrice:      d.TotalPrice,
		Details:         d.Details,
		CreatedAt:       d.CreatedAt,
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		ID:              m.ID,
		ProductID:       m.ProductID,
		TransactionDate: m.TransactionDate,
		TransactionType: domain.TransactionType(m.TransactionType),
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		TotalPrice:      m.TotalPrice,
		Details:         m.Details,
		CreatedAt:       m.CreatedAt,
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions to a slice of domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
