package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gscube/bulkerpay/internal/domain/entity"
	errs "github.com/gscube/bulkerpay/internal/domain/error"
	coreport "github.com/gscube/bulkerpay/internal/domain/port/core"
	"github.com/gscube/bulkerpay/internal/infrastructure/adapter/model"
)

// TransactionRepository implements persistence.TransactionRepository using GORM
type TransactionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *TransactionRepository) entityToModel(txn *entity.PaymentTransaction) model.PaymentTransaction {
	return model.PaymentTransaction{
		ID:               txn.ID,
		UserID:           txn.UserID,
		PackageID:        txn.PackageID,
		Amount:           txn.Amount,
		Currency:         txn.Currency,
		Credits:          txn.Credits,
		Status:           string(txn.Status),
		PaymentMethod:    txn.PaymentMethod,
		GatewayReference: txn.GatewayReference,
		CreatedAt:        txn.CreatedAt,
		CompletedAt:      txn.CompletedAt,
		FailureReason:    txn.FailureReason,
		CreditsApplied:   txn.CreditsApplied,
	}
}

func (r *TransactionRepository) modelToEntity(m *model.PaymentTransaction) *entity.PaymentTransaction {
	return &entity.PaymentTransaction{
		ID:               m.ID,
		UserID:           m.UserID,
		PackageID:        m.PackageID,
		Amount:           m.Amount,
		Currency:         m.Currency,
		Credits:          m.Credits,
		Status:           entity.PaymentStatus(m.Status),
		PaymentMethod:    m.PaymentMethod,
		GatewayReference: m.GatewayReference,
		CreatedAt:        m.CreatedAt,
		CompletedAt:      m.CompletedAt,
		FailureReason:    m.FailureReason,
		CreditsApplied:   m.CreditsApplied,
	}
}

// Create saves a new transaction record
func (r *TransactionRepository) Create(ctx context.Context, txn *entity.PaymentTransaction) error {
	r.logger.Debug("Creating payment transaction", map[string]any{
		"transaction_id":    txn.ID,
		"gateway_reference": txn.GatewayReference,
		"user_id":           txn.UserID,
	})

	txnModel := r.entityToModel(txn)
	result := r.db.WithContext(ctx).Create(&txnModel)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Warn("Duplicate gateway reference on create", map[string]any{
				"transaction_id":    txn.ID,
				"gateway_reference": txn.GatewayReference,
			})
			return errs.ErrDuplicateReference
		}
		r.logger.Error("Failed to create payment transaction", map[string]any{
			"transaction_id": txn.ID,
			"error":          result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return nil
}

// GetByID retrieves a transaction by its server-generated id
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*entity.PaymentTransaction, error) {
	var txnModel model.PaymentTransaction
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&txnModel)
	if result.Error != nil {
		return nil, r.mapLookupError("id", id, result.Error)
	}
	return r.modelToEntity(&txnModel), nil
}

// GetByGatewayReference retrieves a transaction by its gateway reference
func (r *TransactionRepository) GetByGatewayReference(ctx context.Context, reference string) (*entity.PaymentTransaction, error) {
	var txnModel model.PaymentTransaction
	result := r.db.WithContext(ctx).Where("gateway_reference = ?", reference).First(&txnModel)
	if result.Error != nil {
		return nil, r.mapLookupError("gateway_reference", reference, result.Error)
	}
	return r.modelToEntity(&txnModel), nil
}

// GetByGatewayReferenceForUpdate locks the transaction row for the duration
// of the surrounding store transaction. SQLite serializes writers on its own,
// so the locking clause is applied for postgres only.
func (r *TransactionRepository) GetByGatewayReferenceForUpdate(ctx context.Context, reference string) (*entity.PaymentTransaction, error) {
	q := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var txnModel model.PaymentTransaction
	result := q.Where("gateway_reference = ?", reference).First(&txnModel)
	if result.Error != nil {
		return nil, r.mapLookupError("gateway_reference", reference, result.Error)
	}
	return r.modelToEntity(&txnModel), nil
}

// Update persists the mutable fields of an existing transaction
func (r *TransactionRepository) Update(ctx context.Context, txn *entity.PaymentTransaction) error {
	r.logger.Debug("Updating payment transaction", map[string]any{
		"transaction_id":  txn.ID,
		"status":          txn.Status,
		"credits_applied": txn.CreditsApplied,
	})

	result := r.db.WithContext(ctx).Model(&model.PaymentTransaction{}).
		Where("id = ?", txn.ID).
		Updates(map[string]interface{}{
			"status":          string(txn.Status),
			"completed_at":    txn.CompletedAt,
			"failure_reason":  txn.FailureReason,
			"credits_applied": txn.CreditsApplied,
		})

	if result.Error != nil {
		r.logger.Error("Failed to update payment transaction", map[string]any{
			"transaction_id": txn.ID,
			"error":          result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return errs.ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) mapLookupError(field, value string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.Warn("Payment transaction not found", map[string]any{
			field: value,
		})
		return errs.ErrTransactionNotFound
	}
	r.logger.Error("Failed to read payment transaction", map[string]any{
		field:   value,
		"error": err.Error(),
	})
	return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
}
