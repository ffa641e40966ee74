package entity

import (
	"fmt"
	"time"

	errs "github.com/gscube/bulkerpay/internal/domain/error"
	coreport "github.com/gscube/bulkerpay/internal/domain/port/core"
)

// CreditBalance is a user's SMS credit account. This subsystem only ever
// increases AvailableCredits; spending is owned elsewhere.
type CreditBalance struct {
	UserID           string
	AvailableCredits int64
	UsedCredits      int64
	LastUpdated      time.Time
}

// AddCredits increases the available balance. Negative deltas are rejected:
// reconciliation never decreases a balance.
func (b *CreditBalance) AddCredits(credits int64, timeProvider coreport.TimeProvider) error {
	if credits < 0 {
		return fmt.Errorf("%w: credit delta cannot be negative", errs.ErrValidation)
	}
	b.AvailableCredits += credits
	b.LastUpdated = timeProvider.Now()
	return nil
}
