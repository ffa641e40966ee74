package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/gscube/bulkerpay/internal/domain/entity"
	errs "github.com/gscube/bulkerpay/internal/domain/error"
)

// fallbackFailureReason is recorded when the gateway declines without giving
// a reason of its own.
const fallbackFailureReason = "Payment verification failed"

// Verify queries the gateway for the authoritative status of a reference and
// settles the stored transaction accordingly. The store lookup runs before
// the gateway call so unknown and already-settled references never cost a
// gateway round trip; calling Verify again for a settled transaction is a
// read-only no-op and never re-applies credits.
func (s *Service) Verify(ctx context.Context, reference string) (*entity.PaymentTransaction, error) {
	if err := s.validator.ValidateReference(reference); err != nil {
		return nil, err
	}

	// A cache hit is a settled record reconciled recently; terminal states
	// are final, so it answers the call without a store read or a gateway
	// round trip. Cache errors degrade to the store path.
	if cached, err := s.cache.GetSettled(ctx, reference); err == nil && cached != nil {
		s.logger.Debug("Verification answered from cache", map[string]any{
			"gateway_reference": reference,
			"status":            cached.Status,
		})
		return cached, nil
	}

	txn, err := s.transactionRepo.GetByGatewayReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	if txn.IsTerminal() {
		if txn.Status == entity.StatusSuccess && !txn.CreditsApplied {
			// SUCCESS without the credit marker is the recoverable intermediate
			// state; re-drive the reconciliation from the stored record.
			return s.reconcile(ctx, txn.GatewayReference)
		}
		s.logger.Debug("Verify on settled transaction", map[string]any{
			"transaction_id":    txn.ID,
			"gateway_reference": reference,
			"status":            txn.Status,
		})
		return txn, nil
	}

	result, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		// Transport failure is not an authoritative answer: the stored record
		// stays untouched.
		s.logger.Error("Gateway verify call failed", map[string]any{
			"gateway_reference": reference,
			"error":             err.Error(),
		})
		return nil, errs.NewUpstreamError("verify", reference, err)
	}

	if result.Succeeded {
		return s.reconcile(ctx, txn.GatewayReference)
	}

	reason := result.FailureReason
	if strings.TrimSpace(reason) == "" {
		reason = fallbackFailureReason
	}
	settled, err := s.settleFailed(ctx, reference, reason)
	if err != nil {
		return nil, err
	}

	if settled.Status == entity.StatusFailed {
		s.logger.Info("Payment verification failed", map[string]any{
			"transaction_id":    settled.ID,
			"user_id":           settled.UserID,
			"gateway_reference": reference,
			"gateway_status":    result.GatewayStatus,
			"failure_reason":    reason,
		})
	}
	return settled, nil
}

// settleFailed records a gateway decline. The locked re-read makes the write
// conditional: a concurrent verification may have settled the record in the
// window between our store read and the gateway's answer, and a stale decline
// must never move a record out of a terminal state. When the re-read shows a
// terminal record the stored outcome wins and the decline is discarded.
func (s *Service) settleFailed(ctx context.Context, reference, reason string) (*entity.PaymentTransaction, error) {
	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := s.uow.Rollback(txCtx); rbErr != nil {
				s.logger.Error("Failed to roll back failure settlement", map[string]any{
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

	if txn.IsTerminal() {
		s.logger.Debug("Discarding stale decline for settled transaction", map[string]any{
			"transaction_id":    txn.ID,
			"gateway_reference": reference,
			"status":            txn.Status,
		})
		return txn, nil
	}

	if err := txn.MarkFailed(s.timeProvider, reason); err != nil {
		return nil, err
	}
	if err := txnRepo.Update(txCtx, txn); err != nil {
		return nil, err
	}
	if err := s.uow.Commit(txCtx); err != nil {
		return nil, err
	}
	committed = true

	if err := s.cache.StoreSettled(ctx, txn, referenceCacheTTL); err != nil {
		s.logger.Warn("Failed to cache settled transaction", map[string]any{
			"gateway_reference": reference,
			"error":             err.Error(),
		})
	}
	return txn, nil
}

// RetryCreditUpdate re-runs verification and reconciliation for a known
// transaction id. It is safe to invoke repeatedly: once the credit increment
// has been committed the call is a no-op.
func (s *Service) RetryCreditUpdate(ctx context.Context, transactionID string) (*entity.PaymentTransaction, error) {
	if err := s.validator.ValidateTransactionID(transactionID); err != nil {
		return nil, err
	}

	txn, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if txn.Status == entity.StatusSuccess && txn.CreditsApplied {
		s.logger.Info("Retry requested for fully settled transaction, nothing to do", map[string]any{
			"transaction_id": transactionID,
		})
		return txn, nil
	}

	s.logger.Info("Manually retrying verification", map[string]any{
		"transaction_id":    transactionID,
		"gateway_reference": txn.GatewayReference,
		"status":            txn.Status,
		"credits_applied":   txn.CreditsApplied,
	})
	return s.Verify(ctx, txn.GatewayReference)
}

// GetCreditBalance returns a user's current credit balance document.
func (s *Service) GetCreditBalance(ctx context.Context, userID string) (*entity.CreditBalance, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: userId is required", errs.ErrValidation)
	}
	return s.creditRepo.GetByUserID(ctx, userID)
}
