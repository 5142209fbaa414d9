package mapping

import (
	"github.com/SscSPs/inventory_management_app/internal/core/domain"
	"github.com/SscSPs/inventory_management_app/internal/models"
)

// ToModelStockAdjustment converts a domain StockAdjustment to a model StockAdjustment
func ToModelStockAdjustment(d domain.StockAdjustment) models.StockAdjustment {
	return models.StockAdjustment{
		ID:            d.ID,
		TransactionID: d.TransactionID,
		ProductID:     d.ProductID,
		Quantity:      d.Quantity,
		Direction:     string(d.Direction),
		Operation:     string(d.Operation),
		Status:        string(d.Status),
		Attempts:      d.Attempts,
		LastError:     d.LastError,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainStockAdjustment converts a model StockAdjustment to a domain StockAdjustment
func ToDomainStockAdjustment(m models.StockAdjustment) domain.StockAdjustment {
	return domain.StockAdjustment{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		ProductID:     m.ProductID,
		Quantity:      m.Quantity,
		Direction:     domain.StockDirection(m.Direction),
		Operation:     domain.AdjustmentOperation(m.Operation),
		Status:        domain.AdjustmentStatus(m.Status),
		Attempts:      m.Attempts,
		LastError:     m.LastError,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainStockAdjustmentSlice converts a slice of model StockAdjustments to a slice of domain StockAdjustments
func ToDomainStockAdjustmentSlice(ms []models.StockAdjustment) []domain.StockAdjustment {
	ds := make([]domain.StockAdjustment, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainStockAdjustment(m)
	}
	return ds
}
