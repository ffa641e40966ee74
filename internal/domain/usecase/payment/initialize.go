package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gscube/bulkerpay/internal/domain/entity"
	errs "github.com/gscube/bulkerpay/internal/domain/error"
	gatewayport "github.com/gscube/bulkerpay/internal/domain/port/gateway"
	"github.com/gscube/bulkerpay/internal/domain/port/usecase"
)

// newGatewayReference generates a fresh globally-unique reference for a
// transaction. The txn_ prefix keeps references recognizable in gateway
// dashboards.
func newGatewayReference() string {
	return "txn_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Initialize opens a transaction with the gateway and persists a PENDING
// record. A gateway-side decline leaves no artifact behind: from the caller's
// point of view the transaction never existed, and a retry simply
// re-initializes with a fresh reference.
func (s *Service) Initialize(ctx context.Context, in usecase.InitializeInput) (*usecase.InitializeOutput, error) {
	if err := s.validator.ValidateInitialize(in); err != nil {
		s.logger.Warn("Rejected initialize request", map[string]any{
			"user_id": in.UserID,
			"error":   err.Error(),
		})
		return nil, err
	}

	reference := newGatewayReference()

	// Minor-unit conversion happens here and only here; the persisted record
	// keeps the major-unit amount.
	amountMinor, err := entity.MinorUnits(in.Amount)
	if err != nil {
		return nil, err
	}

	result, err := s.gateway.Initialize(ctx, gatewayport.InitializeRequest{
		Email:       in.Email,
		AmountMinor: amountMinor,
		Currency:    in.Currency,
		Reference:   reference,
		CallbackURL: s.callbackURL,
	})
	if err != nil {
		s.logger.Error("Gateway initialize call failed", map[string]any{
			"user_id":           in.UserID,
			"gateway_reference": reference,
			"error":             err.Error(),
		})
		return nil, errs.NewUpstreamError("initialize", reference, err)
	}

	if !result.Accepted {
		s.logger.Warn("Gateway declined transaction initialization", map[string]any{
			"user_id":           in.UserID,
			"gateway_reference": reference,
			"gateway_message":   result.Message,
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrGatewayRejected, declineMessage(result.Message))
	}

	txn, err := entity.NewPaymentTransaction(
		in.UserID,
		in.PackageID,
		in.Amount,
		in.Currency,
		in.Credits,
		reference,
		s.timeProvider,
	)
	if err != nil {
		return nil, err
	}

	if err := s.transactionRepo.Create(ctx, txn); err != nil {
		s.logger.Error("Failed to persist pending transaction", map[string]any{
			"transaction_id":    txn.ID,
			"gateway_reference": reference,
			"error":             err.Error(),
		})
		return nil, err
	}

	s.logger.Info("Payment transaction initialized", map[string]any{
		"transaction_id":    txn.ID,
		"user_id":           in.UserID,
		"gateway_reference": reference,
		"amount":            in.Amount,
		"currency":          in.Currency,
		"credits":           in.Credits,
	})

	return &usecase.InitializeOutput{
		TransactionID: txn.ID,
		// The access code is an opaque pass-through for the mobile checkout SDK.
		GatewayReference: result.AccessCode,
		Message:          "Payment initiated successfully",
	}, nil
}

func declineMessage(gatewayMessage string) string {
	if strings.TrimSpace(gatewayMessage) == "" {
		return "failed to initialize payment with the gateway"
	}
	return gatewayMessage
}
