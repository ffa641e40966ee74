package persistence

import (
	"context"

	"github.com/gscube/bulkerpay/internal/domain/entity"
)

// NotificationRepository persists in-app notification records. Writes are
// best-effort from the caller's point of view: a failed notification never
// fails the operation that produced it.
type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
}
