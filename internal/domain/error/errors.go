package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeValidation         = 4001
	CodeInvalidAmount      = 4002
	CodeGatewayRejected    = 4003
	CodeDuplicateReference = 4004
	CodeTransactionNotFound = 4040
	CodeUserNotFound        = 4041

	// 5xxx - Server errors
	CodeUpstream       = 5001
	CodeConsistency    = 5002
	CodeInternalServer = 5000
)

// Base error types
var (
	// ErrValidation is returned when request input is missing or malformed
	ErrValidation = errors.New("invalid request")

	// ErrInvalidAmount is returned when the payment amount format is invalid
	ErrInvalidAmount = errors.New("invalid amount format")

	// ErrNegativeAmount is returned when the payment amount is zero or negative
	ErrNegativeAmount = errors.New("amount must be positive")

	// ErrGatewayRejected is returned when the gateway gives an authoritative
	// decline during initialization; no transaction record exists afterwards
	ErrGatewayRejected = errors.New("payment gateway rejected the transaction")

	// ErrUpstream is returned when the gateway is unreachable or answers with
	// a non-2xx status; stored records are never mutated on this error
	ErrUpstream = errors.New("payment gateway error")

	// ErrTransactionNotFound is returned when no transaction matches the
	// given gateway reference or transaction id
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrUserNotFound is returned when the user's credit balance document
	// does not exist; reconciliation never creates one
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateReference is returned when a transaction with the same
	// gateway reference already exists
	ErrDuplicateReference = errors.New("transaction with this gateway reference already exists")

	// ErrTerminalState is returned when a status transition out of SUCCESS,
	// FAILED or CANCELLED is attempted
	ErrTerminalState = errors.New("transaction is already in a terminal state")

	// ErrConsistency is returned when a store-level conflict is detected
	// during reconciliation
	ErrConsistency = errors.New("store consistency conflict")

	// ErrDatabaseConnection is returned when there's a problem talking to the store
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrNegativeAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrGatewayRejected):
		return CodeGatewayRejected
	case errors.Is(err, ErrDuplicateReference):
		return CodeDuplicateReference
	case errors.Is(err, ErrTransactionNotFound):
		return CodeTransactionNotFound
	case errors.Is(err, ErrUserNotFound):
		return CodeUserNotFound
	case errors.Is(err, ErrUpstream):
		return CodeUpstream
	case errors.Is(err, ErrTerminalState), errors.Is(err, ErrConsistency):
		return CodeConsistency
	default:
		return CodeInternalServer
	}
}

// ReconciliationError carries context about a failed credit reconciliation
type ReconciliationError struct {
	TransactionID    string
	GatewayReference string
	UserID           string
	Credits          int64
	Err              error
}

// Error implements the error interface for ReconciliationError
func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("credit reconciliation failed for transaction %s (user: %s, credits: %d): %v",
		e.TransactionID, e.UserID, e.Credits, e.Err)
}

// Unwrap returns the underlying error
func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *ReconciliationError) LogFields() map[string]any {
	return map[string]any{
		"error_type":        "reconciliation_error",
		"transaction_id":    e.TransactionID,
		"gateway_reference": e.GatewayReference,
		"user_id":           e.UserID,
		"credits":           e.Credits,
		"error":             e.Err.Error(),
		"error_code":        ErrorCode(e.Err),
	}
}

// NewReconciliationError creates a detailed reconciliation error
func NewReconciliationError(transactionID, gatewayReference, userID string, credits int64, err error) error {
	return &ReconciliationError{
		TransactionID:    transactionID,
		GatewayReference: gatewayReference,
		UserID:           userID,
		Credits:          credits,
		Err:              err,
	}
}

// UpstreamError wraps a transport or non-2xx failure from the payment gateway
type UpstreamError struct {
	Operation string
	Reference string
	Err       error
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gateway %s failed for reference %q: %v", e.Operation, e.Reference, e.Err)
}

// Unwrap returns the underlying error
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is reports whether the target is ErrUpstream
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// LogFields returns a map of fields for structured logging
func (e *UpstreamError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "upstream_error",
		"operation":  e.Operation,
		"reference":  e.Reference,
		"error":      e.Err.Error(),
		"error_code": CodeUpstream,
	}
}

// NewUpstreamError creates a new gateway upstream error
func NewUpstreamError(operation, reference string, err error) error {
	return &UpstreamError{Operation: operation, Reference: reference, Err: err}
}

// IsValidationError checks if the error is a request validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrNegativeAmount)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsUpstreamError checks if the error came from the payment gateway
func IsUpstreamError(err error) bool {
	return errors.Is(err, ErrUpstream)
}

// IsGatewayRejectedError checks if the gateway gave an authoritative decline
func IsGatewayRejectedError(err error) bool {
	return errors.Is(err, ErrGatewayRejected)
}

// IsDuplicateReferenceError checks if the error is a duplicate gateway reference
func IsDuplicateReferenceError(err error) bool {
	return errors.Is(err, ErrDuplicateReference)
}
