package persistence

import (
	"context"

	"github.com/gscube/bulkerpay/internal/domain/entity"
)

// CreditRepository defines the store operations for user credit balances
type CreditRepository interface {
	// GetByUserID retrieves a user's credit balance document
	//
	// Possible errors:
	// - ErrUserNotFound: the balance document does not exist
	// - ErrDatabaseConnection
	GetByUserID(ctx context.Context, userID string) (*entity.CreditBalance, error)

	// AddCredits atomically increases a user's available credits and returns
	// the updated balance. The read-modify-write is guaranteed by the store;
	// a missing balance document is an error, never created here.
	//
	// Possible errors:
	// - ErrUserNotFound
	// - ErrDatabaseConnection
	AddCredits(ctx context.Context, userID string, credits int64) (*entity.CreditBalance, error)
}
