package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/gscube/bulkerpay/internal/domain/entity"
	errs "github.com/gscube/bulkerpay/internal/domain/error"
	coreport "github.com/gscube/bulkerpay/internal/domain/port/core"
	"github.com/gscube/bulkerpay/internal/infrastructure/adapter/model"
)

// NotificationRepository implements persistence.NotificationRepository using GORM
type NotificationRepository struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewNotificationRepository creates a new NotificationRepository instance
func NewNotificationRepository(db *gorm.DB, logger coreport.Logger) *NotificationRepository {
	return &NotificationRepository{db: db, logger: logger}
}

// Create persists a notification record
func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	notificationModel := model.Notification{
		UserID:        n.UserID,
		Type:          n.Type,
		Title:         n.Title,
		Message:       n.Message,
		TransactionID: n.TransactionID,
		Credits:       n.Credits,
		Read:          n.Read,
		CreatedAt:     n.CreatedAt,
	}
	result := r.db.WithContext(ctx).Create(&notificationModel)
	if result.Error != nil {
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	n.ID = notificationModel.ID
	return nil
}
