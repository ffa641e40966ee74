package model

import (
	"time"
)

// Notification represents the database model for in-app notifications
type Notification struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	UserID        string `gorm:"not null;index;size:128"`
	Type          string `gorm:"not null;size:50"`
	Title         string `gorm:"not null;size:255"`
	Message       string `gorm:"type:text"`
	TransactionID string `gorm:"size:64"`
	Credits       int64
	Read          bool      `gorm:"not null;default:false"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}
