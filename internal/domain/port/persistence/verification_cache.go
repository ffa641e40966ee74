package persistence

import (
	"context"
	"time"

	"github.com/gscube/bulkerpay/internal/domain/entity"
)

// VerificationCache remembers recently settled transactions so repeated
// verify calls can be answered without a store read or a gateway round trip.
// Only terminal records may be cached: terminal states are final, so a cached
// answer can never go stale within its ttl. It is an optimization only:
// correctness of exactly-once crediting never depends on it, and
// implementations may lose entries at any time.
type VerificationCache interface {
	// GetSettled returns the cached settled record for the reference, or nil
	// when the cache has no entry
	GetSettled(ctx context.Context, reference string) (*entity.PaymentTransaction, error)

	// StoreSettled caches a settled record under its gateway reference for ttl
	StoreSettled(ctx context.Context, txn *entity.PaymentTransaction, ttl time.Duration) error
}
