package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gscube/bulkerpay/internal/domain/entity"
	errs "github.com/gscube/bulkerpay/internal/domain/error"
	gatewayport "github.com/gscube/bulkerpay/internal/domain/port/gateway"
)

// seedPending creates a PENDING transaction directly in the store
func seedPending(t *testing.T, ts *testService, reference string, credits int64) *entity.PaymentTransaction {
	t.Helper()
	txn, err := entity.NewPaymentTransaction("user-1", "pkg_500", "50.00", "GHS", credits, reference, fixedTimeProvider{testTime})
	require.NoError(t, err)
	require.NoError(t, (&memTxnRepo{store: ts.store}).Create(context.Background(), txn))
	return txn
}

func TestVerify(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown reference never hits the gateway", func(t *testing.T) {
		ts := newTestService()

		_, err := ts.svc.Verify(ctx, "txn_unknown")
		assert.ErrorIs(t, err, errs.ErrTransactionNotFound)
		ts.gateway.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})

	t.Run("Empty reference is a validation error", func(t *testing.T) {
		ts := newTestService()

		_, err := ts.svc.Verify(ctx, "  ")
		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("Successful verification settles and credits exactly once", func(t *testing.T) {
		ts := newTestService()
		ts.store.seedBalance("user-1", 100)
		seedPending(t, ts, "txn_ref1", 500)

		ts.gateway.On("Verify", mock.Anything, "txn_ref1").Return(&gatewayport.VerifyResult{
			Succeeded:     true,
			GatewayStatus: "success",
		}, nil)

		txn, err := ts.svc.Verify(ctx, "txn_ref1")
		require.NoError(t, err)

		assert.Equal(t, entity.StatusSuccess, txn.Status)
		assert.True(t, txn.CreditsApplied)
		require.NotNil(t, txn.CompletedAt)
		assert.Equal(t, int64(600), ts.store.balanceOf("user-1"))

		// Post-commit follow-ups: notification and cache entry
		assert.Equal(t, 1, ts.store.notificationCount())
		assert.Contains(t, ts.cache.stored, "txn_ref1")
	})

	t.Run("Second verify is read-only and never re-credits", func(t *testing.T) {
		ts := newTestService()
		ts.store.seedBalance("user-1", 0)
		seedPending(t, ts, "txn_ref1", 500)

		ts.gateway.On("Verify", mock.Anything, "txn_ref1").Return(&gatewayport.VerifyResult{
			Succeeded: true,
		}, nil).Once()

		_, err := ts.svc.Verify(ctx, "txn_ref1")
		require.NoError(t, err)
		require.Equal(t, int64(500), ts.store.balanceOf("user-1"))

		txn, err := ts.svc.Verify(ctx, "txn_ref1")
		require.NoError(t, err)
		assert.Equal(t, entity.StatusSuccess, txn.Status)
		assert.Equal(t, int64(500), ts.store.balanceOf("user-1"))
		assert.Equal(t, 1, ts.store.notificationCount())
		// The single Once() expectation also proves the gateway saw one call
		ts.gateway.AssertExpectations(t)
	})

	t.Run("Gateway decline marks FAILED with the reason", func(t *testing.T) {
		ts := newTestService()
		seedPending(t, ts, "txn_ref1", 500)

		ts.gateway.On("Verify", mock.Anything, "txn_ref1").Return(&gatewayport.VerifyResult{
			Succeeded:     false,
			GatewayStatus: "failed",
			FailureReason: "Insufficient funds",
		}, nil)

		txn, err := ts.svc.Verify(ctx, "txn_ref1")
		require.NoError(t, err)
		assert.Equal(t, entity.StatusFailed, txn.Status)
		assert.Equal(t, "Insufficient funds", txn.FailureReason)
		assert.False(t, txn.CreditsApplied)
		assert.Equal(t, int64(0), ts.store.balanceOf("user-1"))
		// Declines are terminal too, so they are cached like successes
		assert.Contains(t, ts.cache.stored, "txn_ref1")
	})

	t.Run("Decline without reason gets the fallback", func(t *testing.T) {
		ts := newTestService()
		seedPending(t, ts, "txn_ref1", 500)

		ts.gateway.On("Verify", mock.Anything, "txn_ref1").Return(&gatewayport.VerifyResult{
			Succeeded: false,
		}, nil)

		txn, err := ts.svc.Verify(ctx, "txn_ref1")
		require.NoError(t, err)
		assert.Equal(t, fallbackFailureReason, txn.FailureReason)
	})

	t.Run("Verify on FAILED record returns it without a gateway call", func(t *testing.T) {
		ts := newTestService()
		txn := seedPending(t, ts, "txn_ref1", 500)
		require.NoError(t, txn.MarkFailed(fixedTimeProvider{testTime}, "declined"))
		require.NoError(t, (&memTxnRepo{store: ts.store}).Update(ctx, txn))

		got, err := ts.svc.Verify(ctx, "txn_ref1")
		require.NoError(t, err)
		assert.Equal(t, entity.StatusFailed, got.Status)
		ts.gateway.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})

	t.Run("Transport failure leaves the record untouched", func(t *testing.T) {
		ts := newTestService()
		seedPending(t, ts, "txn_ref1", 500)

		ts.gateway.On("Verify", mock.Anything, "txn_ref1").Return(nil, errors.New("gateway timeout"))

		_, err := ts.svc.Verify(ctx, "txn_ref1")
		assert.ErrorIs(t, err, errs.ErrUpstream)

		stored := ts.store.storedTxn("txn_ref1")
		assert.Equal(t, entity.StatusPending, stored.Status)
		assert.False(t, stored.CreditsApplied)
	})

	t.Run("Missing balance document rolls the whole reconciliation back", func(t *testing.T) {
		ts := newTestService()
		seedPending(t, ts, "txn_ref1", 500) // no balance seeded

		ts.gateway.On("Verify", mock.Anything, "txn_ref1").Return(&gatewayport.VerifyResult{
			Succeeded: true,
		}, nil)

		_, err := ts.svc.Verify(ctx, "txn_ref1")
		assert.ErrorIs(t, err, errs.ErrUserNotFound)

		var rerr *errs.ReconciliationError
		assert.ErrorAs(t, err, &rerr)

		// The status write rolled back with the failed increment; the record
		// stays recoverable for a later retry.
		stored := ts.store.storedTxn("txn_ref1")
		assert.Equal(t, entity.StatusPending, stored.Status)
		assert.False(t, stored.CreditsApplied)
		assert.Equal(t, 0, ts.store.notificationCount())
	})

	t.Run("SUCCESS without marker is re-driven from the store", func(t *testing.T) {
		ts := newTestService()
		ts.store.seedBalance("user-1", 0)
		txn := seedPending(t, ts, "txn_ref1", 500)
		require.NoError(t, txn.MarkSucceeded(fixedTimeProvider{testTime}))
		require.NoError(t, (&memTxnRepo{store: ts.store}).Update(ctx, txn))

		got, err := ts.svc.Verify(ctx, "txn_ref1")
		require.NoError(t, err)

		assert.True(t, got.CreditsApplied)
		assert.Equal(t, int64(500), ts.store.balanceOf("user-1"))
		// Recovery needs no gateway round trip: the stored SUCCESS is trusted
		ts.gateway.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})

	t.Run("Notification failure never fails the verification", func(t *testing.T) {
		ts := newTestService()
		ts.notifRepo.fail = true
		ts.store.seedBalance("user-1", 0)
		seedPending(t, ts, "txn_ref1", 500)

		ts.gateway.On("Verify", mock.Anything, "txn_ref1").Return(&gatewayport.VerifyResult{
			Succeeded: true,
		}, nil)

		txn, err := ts.svc.Verify(ctx, "txn_ref1")
		require.NoError(t, err)
		assert.True(t, txn.CreditsApplied)
		assert.Equal(t, int64(500), ts.store.balanceOf("user-1"))
	})

	t.Run("Late decline never overwrites a committed success", func(t *testing.T) {
		ts := newTestService()
		ts.store.seedBalance("user-1", 0)
		seedPending(t, ts, "txn_ref1", 500)

		entered := make(chan struct{})
		release := make(chan struct{})

		// The first caller reaches the gateway while the charge is still
		// settling and hears a decline, then stalls until the second caller
		// has committed the SUCCESS outcome.
		ts.gateway.On("Verify", mock.Anything, "txn_ref1").Return(&gatewayport.VerifyResult{
			Succeeded:     false,
			GatewayStatus: "failed",
			FailureReason: "charge still settling",
		}, nil).Once().Run(func(mock.Arguments) {
			close(entered)
			<-release
		})
		ts.gateway.On("Verify", mock.Anything, "txn_ref1").Return(&gatewayport.VerifyResult{
			Succeeded: true,
		}, nil).Once()

		var staleTxn *entity.PaymentTransaction
		var staleErr error
		done := make(chan struct{})
		go func() {
			defer close(done)
			staleTxn, staleErr = ts.svc.Verify(context.Background(), "txn_ref1")
		}()

		<-entered
		fresh, err := ts.svc.Verify(ctx, "txn_ref1")
		require.NoError(t, err)
		require.Equal(t, entity.StatusSuccess, fresh.Status)

		close(release)
		<-done

		// The stale decline observes the committed outcome instead of
		// writing over it.
		require.NoError(t, staleErr)
		assert.Equal(t, entity.StatusSuccess, staleTxn.Status)
		assert.True(t, staleTxn.CreditsApplied)

		stored := ts.store.storedTxn("txn_ref1")
		assert.Equal(t, entity.StatusSuccess, stored.Status)
		assert.True(t, stored.CreditsApplied)
		assert.Equal(t, int64(500), ts.store.balanceOf("user-1"))
	})

	t.Run("Reconciliation never credits a record settled as failed", func(t *testing.T) {
		ts := newTestService()
		ts.store.seedBalance("user-1", 0)
		txn := seedPending(t, ts, "txn_ref1", 500)
		require.NoError(t, txn.MarkFailed(fixedTimeProvider{testTime}, "declined"))
		require.NoError(t, (&memTxnRepo{store: ts.store}).Update(ctx, txn))

		got, err := ts.svc.reconcile(ctx, "txn_ref1")
		require.NoError(t, err)
		assert.Equal(t, entity.StatusFailed, got.Status)
		assert.False(t, got.CreditsApplied)
		assert.Equal(t, int64(0), ts.store.balanceOf("user-1"))
		assert.Equal(t, 0, ts.store.notificationCount())
	})

	t.Run("Cache hit short-circuits the gateway", func(t *testing.T) {
		ts := newTestService()
		txn := seedPending(t, ts, "txn_ref1", 500)
		settled := *txn
		require.NoError(t, settled.MarkSucceeded(fixedTimeProvider{testTime}))
		settled.MarkCreditsApplied()
		require.NoError(t, ts.cache.StoreSettled(ctx, &settled, time.Hour))

		got, err := ts.svc.Verify(ctx, "txn_ref1")
		require.NoError(t, err)
		assert.Equal(t, entity.StatusSuccess, got.Status)
		assert.True(t, got.CreditsApplied)
		ts.gateway.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})

	t.Run("Cached settled record answers without a store read", func(t *testing.T) {
		ts := newTestService()
		ts.store.seedBalance("user-1", 0)
		seedPending(t, ts, "txn_ref1", 500)

		ts.gateway.On("Verify", mock.Anything, "txn_ref1").Return(&gatewayport.VerifyResult{
			Succeeded: true,
		}, nil).Once()

		first, err := ts.svc.Verify(ctx, "txn_ref1")
		require.NoError(t, err)
		require.True(t, first.CreditsApplied)
		require.Contains(t, ts.cache.stored, "txn_ref1")

		// With the store record gone the cached copy still answers, proving
		// the hit never reaches the store.
		ts.store.removeTxn("txn_ref1")

		got, err := ts.svc.Verify(ctx, "txn_ref1")
		require.NoError(t, err)
		assert.Equal(t, entity.StatusSuccess, got.Status)
		assert.True(t, got.CreditsApplied)
		ts.gateway.AssertExpectations(t)
	})
}

func TestVerifyConcurrent(t *testing.T) {
	ts := newTestService()
	ts.store.seedBalance("user-1", 0)
	seedPending(t, ts, "txn_ref1", 500)

	ts.gateway.On("Verify", mock.Anything, "txn_ref1").Return(&gatewayport.VerifyResult{
		Succeeded: true,
	}, nil)

	const goroutines = 16
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			_, err := ts.svc.Verify(context.Background(), "txn_ref1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Exactly one increment regardless of interleaving
	assert.Equal(t, int64(500), ts.store.balanceOf("user-1"))

	stored := ts.store.storedTxn("txn_ref1")
	assert.Equal(t, entity.StatusSuccess, stored.Status)
	assert.True(t, stored.CreditsApplied)
}

func TestRetryCreditUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("Fully settled transaction is a no-op", func(t *testing.T) {
		ts := newTestService()
		txn := seedPending(t, ts, "txn_ref1", 500)
		require.NoError(t, txn.MarkSucceeded(fixedTimeProvider{testTime}))
		txn.MarkCreditsApplied()
		require.NoError(t, (&memTxnRepo{store: ts.store}).Update(ctx, txn))

		got, err := ts.svc.RetryCreditUpdate(ctx, txn.ID)
		require.NoError(t, err)
		assert.True(t, got.CreditsApplied)
		ts.gateway.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})

	t.Run("Pending transaction is re-driven through verification", func(t *testing.T) {
		ts := newTestService()
		ts.store.seedBalance("user-1", 0)
		txn := seedPending(t, ts, "txn_ref1", 500)

		ts.gateway.On("Verify", mock.Anything, "txn_ref1").Return(&gatewayport.VerifyResult{
			Succeeded: true,
		}, nil)

		got, err := ts.svc.RetryCreditUpdate(ctx, txn.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusSuccess, got.Status)
		assert.Equal(t, int64(500), ts.store.balanceOf("user-1"))
	})

	t.Run("Unknown transaction id", func(t *testing.T) {
		ts := newTestService()

		_, err := ts.svc.RetryCreditUpdate(ctx, "txn_missing")
		assert.ErrorIs(t, err, errs.ErrTransactionNotFound)
	})

	t.Run("Empty transaction id", func(t *testing.T) {
		ts := newTestService()

		_, err := ts.svc.RetryCreditUpdate(ctx, "")
		assert.ErrorIs(t, err, errs.ErrValidation)
	})
}

func TestGetCreditBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns the balance document", func(t *testing.T) {
		ts := newTestService()
		ts.store.seedBalance("user-1", 750)

		balance, err := ts.svc.GetCreditBalance(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, int64(750), balance.AvailableCredits)
	})

	t.Run("Missing user", func(t *testing.T) {
		ts := newTestService()

		_, err := ts.svc.GetCreditBalance(ctx, "user-1")
		assert.ErrorIs(t, err, errs.ErrUserNotFound)
	})

	t.Run("Empty user id", func(t *testing.T) {
		ts := newTestService()

		_, err := ts.svc.GetCreditBalance(ctx, "")
		assert.ErrorIs(t, err, errs.ErrValidation)
	})
}

// TestPurchaseLifecycle runs the full happy path: initialize a 500-credit
// package for GHS 50.00, then verify and observe the credited balance.
func TestPurchaseLifecycle(t *testing.T) {
	ctx := context.Background()
	ts := newTestService()
	ts.store.seedBalance("user-1", 250)

	var gatewayRef string
	ts.gateway.On("Initialize", mock.Anything, mock.MatchedBy(func(req gatewayport.InitializeRequest) bool {
		gatewayRef = req.Reference
		return req.AmountMinor == 5000
	})).Return(&gatewayport.InitializeResult{Accepted: true, AccessCode: "AC_lifecycle"}, nil)

	out, err := ts.svc.Initialize(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, "AC_lifecycle", out.GatewayReference)

	ts.gateway.On("Verify", mock.Anything, gatewayRef).Return(&gatewayport.VerifyResult{
		Succeeded:     true,
		GatewayStatus: "success",
	}, nil)

	txn, err := ts.svc.Verify(ctx, gatewayRef)
	require.NoError(t, err)

	assert.Equal(t, out.TransactionID, txn.ID)
	assert.Equal(t, entity.StatusSuccess, txn.Status)
	assert.True(t, txn.CreditsApplied)

	balance, err := ts.svc.GetCreditBalance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(750), balance.AvailableCredits)

	assert.Equal(t, 1, ts.store.notificationCount())
}
