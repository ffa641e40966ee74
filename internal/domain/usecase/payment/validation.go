package payment

import (
	"fmt"
	"strings"

	"github.com/gscube/bulkerpay/internal/domain/entity"
	errs "github.com/gscube/bulkerpay/internal/domain/error"
	"github.com/gscube/bulkerpay/internal/domain/port/usecase"
)

// RequestValidator rejects malformed input before it reaches the gateway or
// the store.
type RequestValidator struct{}

// NewRequestValidator creates a new RequestValidator
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{}
}

// ValidateInitialize checks the required fields of an initialize request
func (v *RequestValidator) ValidateInitialize(in usecase.InitializeInput) error {
	var missing []string
	if strings.TrimSpace(in.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(in.Amount) == "" {
		missing = append(missing, "amount")
	}
	if strings.TrimSpace(in.Currency) == "" {
		missing = append(missing, "currency")
	}
	if strings.TrimSpace(in.UserID) == "" {
		missing = append(missing, "userId")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", errs.ErrValidation, strings.Join(missing, ", "))
	}

	if err := entity.ValidatePositiveAmount(in.Amount); err != nil {
		return err
	}
	if in.Credits < 0 {
		return fmt.Errorf("%w: credits cannot be negative", errs.ErrValidation)
	}
	return nil
}

// ValidateReference checks a gateway reference path parameter
func (v *RequestValidator) ValidateReference(reference string) error {
	if strings.TrimSpace(reference) == "" {
		return fmt.Errorf("%w: transaction reference is required", errs.ErrValidation)
	}
	return nil
}

// ValidateTransactionID checks a transaction id path parameter
func (v *RequestValidator) ValidateTransactionID(transactionID string) error {
	if strings.TrimSpace(transactionID) == "" {
		return fmt.Errorf("%w: transaction ID is required", errs.ErrValidation)
	}
	return nil
}
