package model

import (
	"time"
)

// PaymentTransaction represents the database model for payment transactions
type PaymentTransaction struct {
	ID               string `gorm:"primaryKey;size:64"`
	UserID           string `gorm:"not null;index;size:128"`
	PackageID        string `gorm:"not null;size:128"`
	Amount           string `gorm:"not null;size:50"` // major-unit decimal string
	Currency         string `gorm:"not null;size:8"`
	Credits          int64  `gorm:"not null"`
	Status           string `gorm:"not null;size:20;index"`
	PaymentMethod    string `gorm:"not null;size:32"`
	GatewayReference string `gorm:"uniqueIndex;not null;size:128"`
	CreatedAt        time.Time `gorm:"not null"`
	CompletedAt      *time.Time
	FailureReason    string `gorm:"type:text"`
	CreditsApplied   bool   `gorm:"not null;default:false"`
}

// TableName specifies the table name for PaymentTransaction
func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}
