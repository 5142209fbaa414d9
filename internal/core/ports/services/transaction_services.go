package services

import (
	"context"

	"github.com/SscSPs/inventory_management_app/internal/core/domain"
	"github.com/SscSPs/inventory_management_app/internal/dto"
)

// TransactionReaderSvc defines read operations for transactions. None of them touch stock.
type TransactionReaderSvc interface {
	// GetTransactionByID returns one transaction enriched with its product.
	GetTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionView, error)

	// ListTransactions returns one page of transactions and the total match count.
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.TransactionView, int, error)

	// GetProductHistory returns every transaction of a product, newest first.
	GetProductHistory(ctx context.Context, productID string) ([]domain.TransactionView, error)
}

// TransactionWriterSvc defines the operations that move stock in the product service.
type TransactionWriterSvc interface {
	// CreateTransaction records a purchase or sale and applies its stock effect.
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest) (*domain.TransactionView, error)

	// UpdateTransaction swaps the stock effect of a transaction for the new one.
	UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest) (*domain.TransactionView, error)

	// DeleteTransaction removes a transaction and reverses its stock effect.
	DeleteTransaction(ctx context.Context, transactionID string) error
}

// TransactionSvcFacade combines all transaction-related service interfaces
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
}
