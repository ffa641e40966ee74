package dto

import (
	"encoding/json"
	"time"

	"github.com/gscube/bulkerpay/internal/domain/entity"
)

// InitializeRequest represents the API request for starting a payment.
// Amount is bound as json.Number so decimal strings like "19.995" survive
// without float rounding; both "50.00" and 50.00 are accepted on the wire.
type InitializeRequest struct {
	Email     string      `json:"email" binding:"required,email"`
	Amount    json.Number `json:"amount" binding:"required"`
	Currency  string      `json:"currency" binding:"required"`
	UserID    string      `json:"userId" binding:"required"`
	PackageID string      `json:"packageId"`
	Credits   int64       `json:"credits"`
}

// InitializeResponse represents the API response for an initialized payment
type InitializeResponse struct {
	Success          bool   `json:"success"`
	TransactionID    string `json:"transactionId"`
	GatewayReference string `json:"gatewayReference"`
	Message          string `json:"message"`
}

// TransactionRecord is the wire form of a stored payment transaction
type TransactionRecord struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	PackageID        string     `json:"packageId"`
	Amount           string     `json:"amount"`
	Currency         string     `json:"currency"`
	Credits          int64      `json:"credits"`
	Status           string     `json:"status"`
	PaymentMethod    string     `json:"paymentMethod"`
	GatewayReference string     `json:"gatewayReference"`
	CreatedAt        time.Time  `json:"createdAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	FailureReason    string     `json:"failureReason,omitempty"`
	CreditsApplied   bool       `json:"creditsApplied"`
}

// NewTransactionRecord maps a domain transaction to its wire form
func NewTransactionRecord(txn *entity.PaymentTransaction) TransactionRecord {
	return TransactionRecord{
		ID:               txn.ID,
		UserID:           txn.UserID,
		PackageID:        txn.PackageID,
		Amount:           txn.Amount,
		Currency:         txn.Currency,
		Credits:          txn.Credits,
		Status:           string(txn.Status),
		PaymentMethod:    txn.PaymentMethod,
		GatewayReference: txn.GatewayReference,
		CreatedAt:        txn.CreatedAt,
		CompletedAt:      txn.CompletedAt,
		FailureReason:    txn.FailureReason,
		CreditsApplied:   txn.CreditsApplied,
	}
}

// CreditBalanceResponse represents a user's credit account on the wire
type CreditBalanceResponse struct {
	UserID           string    `json:"userId"`
	AvailableCredits int64     `json:"availableCredits"`
	UsedCredits      int64     `json:"usedCredits"`
	LastUpdated      time.Time `json:"lastUpdated"`
}
