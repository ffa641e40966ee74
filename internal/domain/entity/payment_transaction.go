package entity

import (
	"fmt"
	"strings"
	"time"

	errs "github.com/gscube/bulkerpay/internal/domain/error"
	coreport "github.com/gscube/bulkerpay/internal/domain/port/core"
)

// PaymentStatus defines the lifecycle states of a payment transaction
type PaymentStatus string

// Payment statuses. SUCCESS, FAILED and CANCELLED are terminal: once reached,
// no further transition is permitted.
const (
	StatusPending    PaymentStatus = "PENDING"
	StatusProcessing PaymentStatus = "PROCESSING"
	StatusSuccess    PaymentStatus = "SUCCESS"
	StatusFailed     PaymentStatus = "FAILED"
	StatusCancelled  PaymentStatus = "CANCELLED"
)

// PaymentMethodPaystack is the only payment method this integration issues.
// The field is carried on every record so other providers can be added later.
const PaymentMethodPaystack = "paystack"

// PackageIDCustom is the sentinel package identifier for ad-hoc amounts
const PackageIDCustom = "custom"

// PaymentTransaction is one payment attempt against the gateway. Exactly one
// record exists per gateway reference; the reference is the idempotency key
// for verification lookups.
type PaymentTransaction struct {
	ID               string        // Server-generated identifier, immutable once created
	UserID           string        // Owning account reference
	PackageID        string        // Product package, PackageIDCustom when unset
	Amount           string        // Major-unit decimal string as supplied by the caller
	Currency         string        // ISO currency code
	Credits          int64         // Credit quantity granted on success, fixed at initialize time
	Status           PaymentStatus // Lifecycle state
	PaymentMethod    string        // Provider name
	GatewayReference string        // Provider-issued transaction reference, unique
	CreatedAt        time.Time     // When the record was created
	CompletedAt      *time.Time    // When a terminal state was reached (nullable)
	FailureReason    string        // Populated only on FAILED
	CreditsApplied   bool          // True once the credit increment has been committed
}

// NewPaymentTransaction creates a PENDING transaction with basic validation.
// The id is time-based; uniqueness is what matters, not monotonicity.
func NewPaymentTransaction(
	userID string,
	packageID string,
	amount string,
	currency string,
	credits int64,
	gatewayReference string,
	timeProvider coreport.TimeProvider,
) (*PaymentTransaction, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: userId is required", errs.ErrValidation)
	}
	if strings.TrimSpace(gatewayReference) == "" {
		return nil, fmt.Errorf("%w: gateway reference is required", errs.ErrValidation)
	}
	if strings.TrimSpace(currency) == "" {
		return nil, fmt.Errorf("%w: currency is required", errs.ErrValidation)
	}
	if err := ValidatePositiveAmount(amount); err != nil {
		return nil, err
	}
	if credits < 0 {
		return nil, fmt.Errorf("%w: credits cannot be negative", errs.ErrValidation)
	}
	if packageID == "" {
		packageID = PackageIDCustom
	}

	now := timeProvider.Now()
	return &PaymentTransaction{
		ID:               fmt.Sprintf("txn_%d", now.UnixNano()),
		UserID:           userID,
		PackageID:        packageID,
		Amount:           amount,
		Currency:         currency,
		Credits:          credits,
		Status:           StatusPending,
		PaymentMethod:    PaymentMethodPaystack,
		GatewayReference: gatewayReference,
		CreatedAt:        now,
	}, nil
}

// IsTerminal reports whether the transaction has reached a final state
func (t *PaymentTransaction) IsTerminal() bool {
	switch t.Status {
	case StatusSuccess, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// MarkSucceeded transitions the transaction to SUCCESS. Transitions are
// monotonic: a terminal transaction is never moved again.
func (t *PaymentTransaction) MarkSucceeded(timeProvider coreport.TimeProvider) error {
	if t.IsTerminal() {
		return errs.ErrTerminalState
	}
	now := timeProvider.Now()
	t.Status = StatusSuccess
	t.CompletedAt = &now
	return nil
}

// MarkFailed transitions the transaction to FAILED with the gateway's reason
func (t *PaymentTransaction) MarkFailed(timeProvider coreport.TimeProvider, reason string) error {
	if t.IsTerminal() {
		return errs.ErrTerminalState
	}
	now := timeProvider.Now()
	t.Status = StatusFailed
	t.CompletedAt = &now
	t.FailureReason = reason
	return nil
}

// MarkCreditsApplied records that the credit increment for this transaction
// has been committed. Set in the same atomic scope as the increment itself.
func (t *PaymentTransaction) MarkCreditsApplied() {
	t.CreditsApplied = true
}
