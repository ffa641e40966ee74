package persistence

import (
	"context"

	"github.com/gscube/bulkerpay/internal/domain/entity"
)

// TransactionRepository defines the store operations for payment transactions
type TransactionRepository interface {
	// Create saves a new PENDING transaction
	//
	// Possible errors:
	// - ErrDuplicateReference: if a transaction with the same gateway reference exists
	// - ErrDatabaseConnection: if the store is unreachable
	Create(ctx context.Context, transaction *entity.PaymentTransaction) error

	// GetByID retrieves a transaction by its server-generated id
	//
	// Possible errors:
	// - ErrTransactionNotFound
	// - ErrDatabaseConnection
	GetByID(ctx context.Context, id string) (*entity.PaymentTransaction, error)

	// GetByGatewayReference retrieves a transaction by its provider-issued
	// reference, the primary idempotency key
	//
	// Possible errors:
	// - ErrTransactionNotFound
	// - ErrDatabaseConnection
	GetByGatewayReference(ctx context.Context, reference string) (*entity.PaymentTransaction, error)

	// GetByGatewayReferenceForUpdate is GetByGatewayReference with a row lock.
	// Only meaningful inside a unit of work; this read is the serialization
	// point for concurrent reconciliations of the same reference.
	GetByGatewayReferenceForUpdate(ctx context.Context, reference string) (*entity.PaymentTransaction, error)

	// Update persists status, completion timestamp, failure reason and the
	// credits-applied marker of an existing transaction
	//
	// Possible errors:
	// - ErrTransactionNotFound
	// - ErrDatabaseConnection
	Update(ctx context.Context, transaction *entity.PaymentTransaction) error
}
