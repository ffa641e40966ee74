package error

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", ErrValidation, CodeValidation},
		{"invalid amount", ErrInvalidAmount, CodeInvalidAmount},
		{"negative amount", ErrNegativeAmount, CodeInvalidAmount},
		{"gateway rejected", ErrGatewayRejected, CodeGatewayRejected},
		{"duplicate reference", ErrDuplicateReference, CodeDuplicateReference},
		{"transaction not found", ErrTransactionNotFound, CodeTransactionNotFound},
		{"user not found", ErrUserNotFound, CodeUserNotFound},
		{"upstream", ErrUpstream, CodeUpstream},
		{"terminal state", ErrTerminalState, CodeConsistency},
		{"consistency", ErrConsistency, CodeConsistency},
		{"unknown", errors.New("something else"), CodeInternalServer},
		{"wrapped validation", fmt.Errorf("%w: email is required", ErrValidation), CodeValidation},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ErrorCode(tc.err))
		})
	}
}

func TestReconciliationError(t *testing.T) {
	cause := ErrUserNotFound
	err := NewReconciliationError("txn_1", "ref_1", "user-1", 500, cause)

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Contains(t, err.Error(), "txn_1")
	assert.Contains(t, err.Error(), "user-1")
	assert.Contains(t, err.Error(), "500")

	var rerr *ReconciliationError
	assert.ErrorAs(t, err, &rerr)
	fields := rerr.LogFields()
	assert.Equal(t, "reconciliation_error", fields["error_type"])
	assert.Equal(t, "ref_1", fields["gateway_reference"])
	assert.Equal(t, CodeUserNotFound, fields["error_code"])
}

func TestUpstreamError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewUpstreamError("verify", "ref_1", cause)

	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "verify")
	assert.Contains(t, err.Error(), "ref_1")

	var uerr *UpstreamError
	assert.ErrorAs(t, err, &uerr)
	assert.Equal(t, CodeUpstream, uerr.LogFields()["error_code"])
}

func TestErrorClassifiers(t *testing.T) {
	assert.True(t, IsValidationError(ErrValidation))
	assert.True(t, IsValidationError(ErrInvalidAmount))
	assert.True(t, IsValidationError(ErrNegativeAmount))
	assert.False(t, IsValidationError(ErrUpstream))

	assert.True(t, IsNotFoundError(ErrTransactionNotFound))
	assert.True(t, IsNotFoundError(ErrUserNotFound))
	assert.False(t, IsNotFoundError(ErrValidation))

	assert.True(t, IsUpstreamError(NewUpstreamError("initialize", "", errors.New("timeout"))))
	assert.False(t, IsUpstreamError(ErrGatewayRejected))

	assert.True(t, IsGatewayRejectedError(fmt.Errorf("%w: insufficient funds", ErrGatewayRejected)))
	assert.True(t, IsDuplicateReferenceError(ErrDuplicateReference))
}
