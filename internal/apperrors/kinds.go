package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies failures surfaced by the transaction coordinator and the stock client.
// Handlers pick the HTTP status from the kind, never from the message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindProductNotFound
	KindTransactionNotFound
	KindInsufficientStock
	KindStockUpdateFailed
	KindValidationFailed
	KindRemoteUnreachable
	KindStorageFailure
	KindUnexpected
)

// Wire messages that the frontend matches on.
const (
	MsgTransactionNotFound = "Transaction not found"
	MsgProductNotFound     = "Product not found"
	MsgInsufficientStock   = "Insufficient stock for sale"
	MsgStockUpdateFailed   = "Failed to update product stock"
	MsgValidationFailed    = "Validation failed"
	MsgRemoteUnreachable   = "Error communicating with ProductService"
	MsgStorageFailure      = "Failed to persist transaction"
)

func (k Kind) String() string {
	switch k {
	case KindProductNotFound:
		return "ProductNotFound"
	case KindTransactionNotFound:
		return "TransactionNotFound"
	case KindInsufficientStock:
		return "InsufficientStock"
	case KindStockUpdateFailed:
		return "StockUpdateFailed"
	case KindValidationFailed:
		return "ValidationFailed"
	case KindRemoteUnreachable:
		return "RemoteUnreachable"
	case KindStorageFailure:
		return "StorageFailure"
	case KindUnexpected:
		return "Unexpected"
	default:
		return "Unknown"
	}
}

// Error is a classified failure. Details holds per-field validation messages.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

// New creates a classified error with a message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error that keeps the underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation creates a ValidationFailed error listing every failed rule.
func Validation(details ...string) *Error {
	return &Error{Kind: KindValidationFailed, Message: MsgValidationFailed, Details: details}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, apperrors.ErrValidation) and errors.Is(err, apperrors.ErrNotFound)
// keep working for classified errors.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidationFailed
	case ErrNotFound:
		return e.Kind == KindTransactionNotFound || e.Kind == KindProductNotFound
	}
	return false
}

// KindOf extracts the kind from err, looking through wrapping.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the human-readable message of a classified error, or fallback.
func MessageOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

// DetailsOf returns the validation details of a classified error, if any.
func DetailsOf(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}
