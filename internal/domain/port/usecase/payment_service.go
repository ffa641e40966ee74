package usecase

import (
	"context"

	"github.com/gscube/bulkerpay/internal/domain/entity"
)

// InitializeInput is the validated request for opening a payment transaction
type InitializeInput struct {
	Email     string
	Amount    string // major-unit decimal string
	Currency  string
	UserID    string
	PackageID string // optional, defaults to the custom sentinel
	Credits   int64  // optional, credits granted on success
}

// InitializeOutput is returned on a successful initialization. The gateway
// reference field carries the provider's client-facing access code; it is an
// opaque pass-through the mobile client hands to the checkout SDK.
type InitializeOutput struct {
	TransactionID    string
	GatewayReference string
	Message          string
}

// PaymentService is the handler-facing contract of the payment transaction
// lifecycle: initialize, verify, manual retry, balance reads.
type PaymentService interface {
	Initialize(ctx context.Context, in InitializeInput) (*InitializeOutput, error)
	Verify(ctx context.Context, reference string) (*entity.PaymentTransaction, error)
	RetryCreditUpdate(ctx context.Context, transactionID string) (*entity.PaymentTransaction, error)
	GetCreditBalance(ctx context.Context, userID string) (*entity.CreditBalance, error)
}
