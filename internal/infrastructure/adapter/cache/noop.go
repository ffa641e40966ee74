package cache

import (
	"context"
	"time"

	"github.com/gscube/bulkerpay/internal/domain/entity"
	"github.com/gscube/bulkerpay/internal/domain/port/persistence"
)

// NoopCache is the verification cache used when Redis is not configured.
// Every lookup misses, so verification always consults the store.
type NoopCache struct{}

// NewNoop returns a cache that never remembers anything
func NewNoop() *NoopCache {
	return &NoopCache{}
}

// GetSettled always reports a miss
func (NoopCache) GetSettled(ctx context.Context, reference string) (*entity.PaymentTransaction, error) {
	return nil, nil
}

// StoreSettled discards the record
func (NoopCache) StoreSettled(ctx context.Context, txn *entity.PaymentTransaction, ttl time.Duration) error {
	return nil
}

var _ persistence.VerificationCache = (*NoopCache)(nil)
