package domain

// AdjustmentStatus tracks a pending stock adjustment through reconciliation.
type AdjustmentStatus string

const (
	AdjustmentPending   AdjustmentStatus = "pending"
	AdjustmentApplied   AdjustmentStatus = "applied"
	AdjustmentAbandoned AdjustmentStatus = "abandoned"
)

// IsValid reports whether s is a known status.
func (s AdjustmentStatus) IsValid() bool {
	switch s {
	case AdjustmentPending, AdjustmentApplied, AdjustmentAbandoned:
		return true
	}
	return false
}

// AdjustmentOperation names the coordinator step that recorded the adjustment.
type AdjustmentOperation string

const (
	OperationCreate  AdjustmentOperation = "create"
	OperationUpdate  AdjustmentOperation = "update"
	OperationDelete  AdjustmentOperation = "delete"
	OperationRestore AdjustmentOperation = "restore"
)

// StockAdjustment is a remote stock change that has been committed locally
// and still has to be applied (or has been applied) to the product service.
// TransactionID is kept after the transaction row is deleted.
type StockAdjustment struct {
	ID            string              `json:"id"`
	TransactionID *string             `json:"transactionId,omitempty"`
	ProductID     string              `json:"productId"`
	Quantity      int                 `json:"quantity"`
	Direction     StockDirection      `json:"direction"`
	Operation     AdjustmentOperation `json:"operation"`
	Status        AdjustmentStatus    `json:"status"`
	Attempts      int                 `json:"attempts"`
	LastError     *string             `json:"lastError,omitempty"`
	AuditFields
}
