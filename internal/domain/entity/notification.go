package entity

import (
	"fmt"
	"time"

	coreport "github.com/gscube/bulkerpay/internal/domain/port/core"
)

// Notification types
const (
	NotificationCreditUpdate = "CREDIT_UPDATE"
)

// Notification is an in-app message record written for the mobile client.
type Notification struct {
	ID            uint64
	UserID        string
	Type          string
	Title         string
	Message       string
	TransactionID string
	Credits       int64
	Read          bool
	CreatedAt     time.Time
}

// NewCreditNotification builds the notification written after a successful
// credit reconciliation.
func NewCreditNotification(userID, transactionID string, credits int64, timeProvider coreport.TimeProvider) *Notification {
	return &Notification{
		UserID:        userID,
		Type:          NotificationCreditUpdate,
		Title:         "Credits Added",
		Message:       fmt.Sprintf("%d credits have been added to your account. Your credit balance has been updated.", credits),
		TransactionID: transactionID,
		Credits:       credits,
		CreatedAt:     timeProvider.Now(),
	}
}
