package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/gscube/bulkerpay/internal/domain/entity"
	errs "github.com/gscube/bulkerpay/internal/domain/error"
	coreport "github.com/gscube/bulkerpay/internal/domain/port/core"
	"github.com/gscube/bulkerpay/internal/infrastructure/adapter/model"
)

// CreditRepository implements persistence.CreditRepository using GORM
type CreditRepository struct {
	db           *gorm.DB
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewCreditRepository creates a new CreditRepository instance
func NewCreditRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *CreditRepository {
	return &CreditRepository{
		db:           db,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

func (r *CreditRepository) modelToEntity(m *model.CreditBalance) *entity.CreditBalance {
	return &entity.CreditBalance{
		UserID:           m.UserID,
		AvailableCredits: m.AvailableCredits,
		UsedCredits:      m.UsedCredits,
		LastUpdated:      m.LastUpdated,
	}
}

// GetByUserID retrieves a user's credit balance document
func (r *CreditRepository) GetByUserID(ctx context.Context, userID string) (*entity.CreditBalance, error) {
	var balanceModel model.CreditBalance
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&balanceModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			r.logger.Warn("Credit balance not found", map[string]any{
				"user_id": userID,
			})
			return nil, errs.ErrUserNotFound
		}
		r.logger.Error("Failed to read credit balance", map[string]any{
			"user_id": userID,
			"error":   result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return r.modelToEntity(&balanceModel), nil
}

// AddCredits atomically increases a user's available credits. The increment
// runs as a single conditional UPDATE so the read-modify-write cannot
// interleave with a concurrent reconciliation; a missing balance document is
// reported as ErrUserNotFound and never created.
func (r *CreditRepository) AddCredits(ctx context.Context, userID string, credits int64) (*entity.CreditBalance, error) {
	result := r.db.WithContext(ctx).Model(&model.CreditBalance{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"available_credits": gorm.Expr("available_credits + ?", credits),
			"last_updated":      r.timeProvider.Now(),
		})

	if result.Error != nil {
		r.logger.Error("Failed to update credit balance", map[string]any{
			"user_id": userID,
			"credits": credits,
			"error":   result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		r.logger.Warn("Credit balance not found during reconciliation", map[string]any{
			"user_id": userID,
		})
		return nil, errs.ErrUserNotFound
	}

	balance, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Credit balance updated", map[string]any{
		"user_id":     userID,
		"credits":     credits,
		"new_balance": balance.AvailableCredits,
	})
	return balance, nil
}

// CreateBalance creates a fresh credit balance document. Used by account
// provisioning, never by reconciliation.
func (r *CreditRepository) CreateBalance(ctx context.Context, balance *entity.CreditBalance) error {
	balanceModel := model.CreditBalance{
		UserID:           balance.UserID,
		AvailableCredits: balance.AvailableCredits,
		UsedCredits:      balance.UsedCredits,
		LastUpdated:      balance.LastUpdated,
	}
	result := r.db.WithContext(ctx).Create(&balanceModel)
	if result.Error != nil {
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return nil
}
