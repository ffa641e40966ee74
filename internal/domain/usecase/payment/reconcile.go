package payment

import (
	"context"

	"github.com/gscube/bulkerpay/internal/domain/entity"
	errs "github.com/gscube/bulkerpay/internal/domain/error"
)

// reconcile applies the credit-reconciliation protocol for a reference whose
// payment the gateway has confirmed. The SUCCESS status write, the
// credits-applied marker and the balance increment all commit in ONE store
// transaction, so a crash can never leave the transaction SUCCESS-less or the
// account credit-less. The locked re-read of the transaction row is the only
// serialization point: of any number of concurrent reconciliations for the
// same reference, exactly one applies the increment and the rest observe the
// marker and no-op.
func (s *Service) reconcile(ctx context.Context, reference string) (*entity.PaymentTransaction, error) {
	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := s.uow.Rollback(txCtx); rbErr != nil {
				s.logger.Error("Failed to roll back reconciliation", map[string]any{
					"gateway_reference": reference,
					"error":             rbErr.Error(),
				})
			}
		}
	}()

	txnRepo := s.uow.GetTransactionRepository(txCtx)
	txn, err := txnRepo.GetByGatewayReferenceForUpdate(txCtx, reference)
	if err != nil {
		return nil, err
	}

	if txn.CreditsApplied {
		// A concurrent verification got here first.
		s.logger.Debug("Credits already applied, skipping reconciliation", map[string]any{
			"transaction_id":    txn.ID,
			"gateway_reference": reference,
		})
		return txn, nil
	}

	if txn.IsTerminal() && txn.Status != entity.StatusSuccess {
		// A concurrent verification settled the record as failed or cancelled
		// after our caller read it; the stored outcome wins and no credit is
		// ever applied against it.
		s.logger.Warn("Reconciliation skipped for settled transaction", map[string]any{
			"transaction_id":    txn.ID,
			"gateway_reference": reference,
			"status":            txn.Status,
		})
		return txn, nil
	}

	creditRepo := s.uow.GetCreditRepository(txCtx)
	balance, err := creditRepo.AddCredits(txCtx, txn.UserID, txn.Credits)
	if err != nil {
		return nil, errs.NewReconciliationError(txn.ID, reference, txn.UserID, txn.Credits, err)
	}

	if !txn.IsTerminal() {
		if err := txn.MarkSucceeded(s.timeProvider); err != nil {
			return nil, err
		}
	}
	txn.MarkCreditsApplied()

	if err := txnRepo.Update(txCtx, txn); err != nil {
		return nil, errs.NewReconciliationError(txn.ID, reference, txn.UserID, txn.Credits, err)
	}

	if err := s.uow.Commit(txCtx); err != nil {
		return nil, errs.NewReconciliationError(txn.ID, reference, txn.UserID, txn.Credits, err)
	}
	committed = true

	s.logger.Info("Credits reconciled", map[string]any{
		"transaction_id":    txn.ID,
		"user_id":           txn.UserID,
		"gateway_reference": reference,
		"credits":           txn.Credits,
		"new_balance":       balance.AvailableCredits,
	})

	s.afterReconcile(ctx, txn)
	return txn, nil
}

// afterReconcile performs the best-effort follow-ups of a committed
// reconciliation: the in-app notification record and the verification cache
// entry. Failures here are logged and swallowed.
func (s *Service) afterReconcile(ctx context.Context, txn *entity.PaymentTransaction) {
	notification := entity.NewCreditNotification(txn.UserID, txn.ID, txn.Credits, s.timeProvider)
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("Failed to create credit notification", map[string]any{
			"transaction_id": txn.ID,
			"user_id":        txn.UserID,
			"error":          err.Error(),
		})
	}

	if err := s.cache.StoreSettled(ctx, txn, referenceCacheTTL); err != nil {
		s.logger.Warn("Failed to cache settled transaction", map[string]any{
			"gateway_reference": txn.GatewayReference,
			"error":             err.Error(),
		})
	}
}
