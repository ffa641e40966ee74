package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/gscube/bulkerpay/internal/domain/entity"
	errs "github.com/gscube/bulkerpay/internal/domain/error"
	"github.com/gscube/bulkerpay/internal/domain/port/core"
	gatewayport "github.com/gscube/bulkerpay/internal/domain/port/gateway"
	"github.com/gscube/bulkerpay/internal/domain/port/persistence"
)

var testTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// fixedTimeProvider returns a constant time for deterministic tests
type fixedTimeProvider struct {
	now time.Time
}

func (p fixedTimeProvider) Now() time.Time                  { return p.now }
func (p fixedTimeProvider) Since(t time.Time) time.Duration { return p.now.Sub(t) }
func (p fixedTimeProvider) WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}

// nopLogger discards everything
type nopLogger struct{}

func (nopLogger) SetLevel(core.LogLevel)            {}
func (nopLogger) Debug(string, map[string]any)      {}
func (nopLogger) Info(string, map[string]any)       {}
func (nopLogger) Warn(string, map[string]any)       {}
func (nopLogger) Error(string, map[string]any)      {}
func (nopLogger) Flush() error                      { return nil }

// MockGateway is a testify mock of the payment gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Initialize(ctx context.Context, req gatewayport.InitializeRequest) (*gatewayport.InitializeResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gatewayport.InitializeResult), args.Error(1)
}

func (m *MockGateway) Verify(ctx context.Context, reference string) (*gatewayport.VerifyResult, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gatewayport.VerifyResult), args.Error(1)
}

// memStore is an in-memory store implementing the unit of work and the
// repositories behind it. Begin serializes whole units of work the way the
// row lock does in the real store; Rollback restores the pre-transaction
// snapshot.
type memStore struct {
	mu   sync.Mutex // guards the maps
	txMu sync.Mutex // serializes units of work

	transactions  map[string]*entity.PaymentTransaction // keyed by gateway reference
	balances      map[string]*entity.CreditBalance
	notifications []*entity.Notification

	snapTxns     map[string]*entity.PaymentTransaction
	snapBalances map[string]*entity.CreditBalance
}

func newMemStore() *memStore {
	return &memStore{
		transactions: make(map[string]*entity.PaymentTransaction),
		balances:     make(map[string]*entity.CreditBalance),
	}
}

func (s *memStore) seedBalance(userID string, available int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[userID] = &entity.CreditBalance{UserID: userID, AvailableCredits: available, LastUpdated: testTime}
}

func (s *memStore) balanceOf(userID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.balances[userID]; ok {
		return b.AvailableCredits
	}
	return 0
}

func (s *memStore) storedTxn(reference string) *entity.PaymentTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.transactions[reference]; ok {
		cp := *t
		return &cp
	}
	return nil
}

func (s *memStore) removeTxn(reference string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.transactions, reference)
}

func (s *memStore) notificationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notifications)
}

// Begin takes the transaction lock and snapshots the store
func (s *memStore) Begin(ctx context.Context) (context.Context, error) {
	s.txMu.Lock()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapTxns = make(map[string]*entity.PaymentTransaction, len(s.transactions))
	for k, v := range s.transactions {
		cp := *v
		s.snapTxns[k] = &cp
	}
	s.snapBalances = make(map[string]*entity.CreditBalance, len(s.balances))
	for k, v := range s.balances {
		cp := *v
		s.snapBalances[k] = &cp
	}
	return ctx, nil
}

func (s *memStore) Commit(ctx context.Context) error {
	s.mu.Lock()
	s.snapTxns = nil
	s.snapBalances = nil
	s.mu.Unlock()
	s.txMu.Unlock()
	return nil
}

func (s *memStore) Rollback(ctx context.Context) error {
	s.mu.Lock()
	if s.snapTxns != nil {
		s.transactions = s.snapTxns
		s.balances = s.snapBalances
		s.snapTxns = nil
		s.snapBalances = nil
	}
	s.mu.Unlock()
	s.txMu.Unlock()
	return nil
}

func (s *memStore) GetTransactionRepository(ctx context.Context) persistence.TransactionRepository {
	return &memTxnRepo{store: s}
}

func (s *memStore) GetCreditRepository(ctx context.Context) persistence.CreditRepository {
	return &memCreditRepo{store: s}
}

type memTxnRepo struct {
	store *memStore
}

func (r *memTxnRepo) Create(ctx context.Context, txn *entity.PaymentTransaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.transactions[txn.GatewayReference]; exists {
		return errs.ErrDuplicateReference
	}
	cp := *txn
	r.store.transactions[txn.GatewayReference] = &cp
	return nil
}

func (r *memTxnRepo) GetByID(ctx context.Context, id string) (*entity.PaymentTransaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, t := range r.store.transactions {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, errs.ErrTransactionNotFound
}

func (r *memTxnRepo) GetByGatewayReference(ctx context.Context, reference string) (*entity.PaymentTransaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.transactions[reference]
	if !ok {
		return nil, errs.ErrTransactionNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTxnRepo) GetByGatewayReferenceForUpdate(ctx context.Context, reference string) (*entity.PaymentTransaction, error) {
	return r.GetByGatewayReference(ctx, reference)
}

func (r *memTxnRepo) Update(ctx context.Context, txn *entity.PaymentTransaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.transactions[txn.GatewayReference]; !ok {
		return errs.ErrTransactionNotFound
	}
	cp := *txn
	r.store.transactions[txn.GatewayReference] = &cp
	return nil
}

type memCreditRepo struct {
	store *memStore
}

func (r *memCreditRepo) GetByUserID(ctx context.Context, userID string) (*entity.CreditBalance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.balances[userID]
	if !ok {
		return nil, errs.ErrUserNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memCreditRepo) AddCredits(ctx context.Context, userID string, credits int64) (*entity.CreditBalance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.balances[userID]
	if !ok {
		return nil, errs.ErrUserNotFound
	}
	b.AvailableCredits += credits
	b.LastUpdated = testTime
	cp := *b
	return &cp, nil
}

type memNotificationRepo struct {
	store *memStore
	fail  bool
}

func (r *memNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	if r.fail {
		return fmt.Errorf("%w: notification write refused", errs.ErrDatabaseConnection)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *n
	r.store.notifications = append(r.store.notifications, &cp)
	return nil
}

// mapCache is an in-memory settled-record cache that records what was stored
type mapCache struct {
	mu      sync.Mutex
	records map[string]*entity.PaymentTransaction
	stored  []string
}

func newMapCache() *mapCache {
	return &mapCache{records: make(map[string]*entity.PaymentTransaction)}
}

func (c *mapCache) GetSettled(ctx context.Context, reference string) (*entity.PaymentTransaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.records[reference]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (c *mapCache) StoreSettled(ctx context.Context, txn *entity.PaymentTransaction, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *txn
	c.records[txn.GatewayReference] = &cp
	c.stored = append(c.stored, txn.GatewayReference)
	return nil
}

// testService bundles a service with the fakes behind it
type testService struct {
	svc       *Service
	gateway   *MockGateway
	store     *memStore
	cache     *mapCache
	notifRepo *memNotificationRepo
}

func newTestService() *testService {
	gw := new(MockGateway)
	store := newMemStore()
	cache := newMapCache()
	notifRepo := &memNotificationRepo{store: store}

	svc := NewService(
		gw,
		store,
		&memTxnRepo{store: store},
		&memCreditRepo{store: store},
		notifRepo,
		cache,
		fixedTimeProvider{testTime},
		nopLogger{},
		"https://smsbulker.web.app/payment/callback",
	)

	return &testService{
		svc:       svc,
		gateway:   gw,
		store:     store,
		cache:     cache,
		notifRepo: notifRepo,
	}
}
