package payment

import (
	"time"

	coreport "github.com/gscube/bulkerpay/internal/domain/port/core"
	gatewayport "github.com/gscube/bulkerpay/internal/domain/port/gateway"
	"github.com/gscube/bulkerpay/internal/domain/port/persistence"
	"github.com/gscube/bulkerpay/internal/domain/port/usecase"
)

// referenceCacheTTL bounds how long a reconciled reference is remembered by
// the verification cache. Records older than this fall back to a store read.
const referenceCacheTTL = 24 * time.Hour

// Service orchestrates the payment transaction lifecycle: initialize against
// the gateway, persist a pending record, verify asynchronously, and credit
// the user's account exactly once. All lifecycle invariants live here.
type Service struct {
	gateway          gatewayport.PaymentGateway
	uow              persistence.UnitOfWork
	transactionRepo  persistence.TransactionRepository
	creditRepo       persistence.CreditRepository
	notificationRepo persistence.NotificationRepository
	cache            persistence.VerificationCache
	timeProvider     coreport.TimeProvider
	logger           coreport.Logger
	validator        *RequestValidator
	callbackURL      string
}

var _ usecase.PaymentService = (*Service)(nil)

// NewService creates a payment service. The store handles, gateway client and
// cache are constructed by the caller and injected; the service holds no
// ambient connections of its own.
func NewService(
	gw gatewayport.PaymentGateway,
	uow persistence.UnitOfWork,
	transactionRepo persistence.TransactionRepository,
	creditRepo persistence.CreditRepository,
	notificationRepo persistence.NotificationRepository,
	cache persistence.VerificationCache,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	callbackURL string,
) *Service {
	return &Service{
		gateway:          gw,
		uow:              uow,
		transactionRepo:  transactionRepo,
		creditRepo:       creditRepo,
		notificationRepo: notificationRepo,
		cache:            cache,
		timeProvider:     timeProvider,
		logger:           logger,
		validator:        NewRequestValidator(),
		callbackURL:      callbackURL,
	}
}
