package persistence

import (
	"context"
)

// UnitOfWork coordinates multi-record store transactions. The credit
// reconciliation protocol runs the transaction status write and the credit
// increment inside one unit of work so a crash can never separate them.
type UnitOfWork interface {
	// Begin starts a new store transaction and returns a transactional context
	Begin(ctx context.Context) (context.Context, error)

	// Commit commits the transaction in the given context
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction in the given context
	Rollback(ctx context.Context) error

	// GetTransactionRepository returns a transaction repository bound to the
	// transaction in ctx, or to the base connection when ctx carries none
	GetTransactionRepository(ctx context.Context) TransactionRepository

	// GetCreditRepository returns a credit repository bound to the current transaction
	GetCreditRepository(ctx context.Context) CreditRepository
}
