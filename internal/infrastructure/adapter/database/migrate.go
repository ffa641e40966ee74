package database

import (
	"fmt"

	"gorm.io/gorm"

	coreport "github.com/gscube/bulkerpay/internal/domain/port/core"
	"github.com/gscube/bulkerpay/internal/infrastructure/adapter/model"
)

// Migrate brings the schema up to date for all payment models
func Migrate(db *gorm.DB, logger coreport.Logger) error {
	logger.Info("Running database migrations", nil)

	if err := db.AutoMigrate(
		&model.PaymentTransaction{},
		&model.CreditBalance{},
		&model.Notification{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Database migrations completed", nil)
	return nil
}
