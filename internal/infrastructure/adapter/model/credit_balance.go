package model

import (
	"time"
)

// CreditBalance represents the database model for user credit accounts
type CreditBalance struct {
	UserID           string    `gorm:"primaryKey;size:128"`
	AvailableCredits int64     `gorm:"not null"`
	UsedCredits      int64     `gorm:"not null;default:0"`
	LastUpdated      time.Time `gorm:"not null"`
}

// TableName specifies the table name for CreditBalance
func (CreditBalance) TableName() string {
	return "credit_balances"
}
