package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"rentpay/internal/domain"
	"rentpay/internal/event"
	"rentpay/internal/provider"
	"rentpay/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	// Counters for verification
	CreateCallCount           int32
	UpdateStatusCallCount     int32
	UpdateStatusFromCallCount int32
	DeleteCallCount           int32

	// Error injection
	CreateError           error
	FindError             error
	UpdateStatusError     error
	UpdateStatusFromError error
	DeleteError           error
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
	}
}

// AddPayment adds a payment to the mock repository.
func (m *MockPaymentRepository) AddPayment(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
}

// GetPayment returns a payment for test assertions.
func (m *MockPaymentRepository) GetPayment(id string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payments[id]
}

// Count returns the number of stored payments.
func (m *MockPaymentRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payments)
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *payment
	m.payments[payment.ID] = &copy
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *payment
	return &copy, nil
}

func (m *MockPaymentRepository) GetByProviderPaymentID(ctx context.Context, providerPaymentID string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.ProviderPaymentID == providerPaymentID {
			copy := *p
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockPaymentRepository) Find(ctx context.Context, filter domain.PaymentFilter, page, size int) ([]*domain.Payment, int64, error) {
	if m.FindError != nil {
		return nil, 0, m.FindError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Payment
	for _, p := range m.payments {
		if filter.RentID != nil && p.RentID != *filter.RentID {
			continue
		}
		if filter.ClientID != nil && p.ClientID != *filter.ClientID {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		copy := *p
		result = append(result, &copy)
	}
	return result, int64(len(result)), nil
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	payment.Status = status
	return nil
}

func (m *MockPaymentRepository) UpdateStatusFrom(ctx context.Context, id string, from, to domain.PaymentStatus) (bool, error) {
	atomic.AddInt32(&m.UpdateStatusFromCallCount, 1)
	if m.UpdateStatusFromError != nil {
		return false, m.UpdateStatusFromError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok || payment.Status != from {
		return false, nil
	}
	payment.Status = to
	return true, nil
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id string) error {
	atomic.AddInt32(&m.DeleteCallCount, 1)
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.payments, id)
	return nil
}

// ──────────────────────────────────────────────
// MOCK PROVIDER CLIENT
// ──────────────────────────────────────────────

// MockProvider is a mock implementation of the payment provider client.
type MockProvider struct {
	// Configured responses
	Intent          *provider.Intent
	RetrievedIntent *provider.Intent
	CapturedIntent  *provider.Intent
	Refund          *provider.Refund
	WebhookEvent    *provider.WebhookEvent

	// Counters for verification
	CreateIntentCallCount   int32
	RetrieveIntentCallCount int32
	CaptureIntentCallCount  int32
	CreateRefundCallCount   int32

	// Error injection
	CreateIntentError   error
	RetrieveIntentError error
	CaptureIntentError  error
	CreateRefundError   error
	VerifyWebhookError  error
}

// NewMockProvider creates a new mock provider client.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) CreateIntent(ctx context.Context, params provider.CreateIntentParams) (*provider.Intent, error) {
	atomic.AddInt32(&m.CreateIntentCallCount, 1)
	if m.CreateIntentError != nil {
		return nil, m.CreateIntentError
	}
	return m.Intent, nil
}

func (m *MockProvider) RetrieveIntent(ctx context.Context, id string) (*provider.Intent, error) {
	atomic.AddInt32(&m.RetrieveIntentCallCount, 1)
	if m.RetrieveIntentError != nil {
		return nil, m.RetrieveIntentError
	}
	if m.RetrievedIntent != nil {
		return m.RetrievedIntent, nil
	}
	return m.Intent, nil
}

func (m *MockProvider) CaptureIntent(ctx context.Context, id string) (*provider.Intent, error) {
	atomic.AddInt32(&m.CaptureIntentCallCount, 1)
	if m.CaptureIntentError != nil {
		return nil, m.CaptureIntentError
	}
	if m.CapturedIntent != nil {
		return m.CapturedIntent, nil
	}
	return m.Intent, nil
}

func (m *MockProvider) CreateRefund(ctx context.Context, paymentIntentID string) (*provider.Refund, error) {
	atomic.AddInt32(&m.CreateRefundCallCount, 1)
	if m.CreateRefundError != nil {
		return nil, m.CreateRefundError
	}
	return m.Refund, nil
}

func (m *MockProvider) VerifyWebhook(payload []byte, signature string) (*provider.WebhookEvent, error) {
	if m.VerifyWebhookError != nil {
		return nil, m.VerifyWebhookError
	}
	return m.WebhookEvent, nil
}

// ──────────────────────────────────────────────
// MOCK RENT SERVICE CLIENT
// ──────────────────────────────────────────────

// MockRentService is a mock implementation of the rent service client.
type MockRentService struct {
	// Configured responses
	CanPayResult bool
	ActiveResult bool

	// Counters for verification
	CanAcceptPaymentCallCount int32
	IsActiveCallCount         int32
	MarkCompletedCallCount    int32

	// Error injection
	CanAcceptPaymentError error
	IsActiveError         error
	MarkCompletedError    error
}

// NewMockRentService creates a new mock rent service that accepts payments.
func NewMockRentService() *MockRentService {
	return &MockRentService{CanPayResult: true}
}

func (m *MockRentService) CanAcceptPayment(ctx context.Context, rentID int64) (bool, error) {
	atomic.AddInt32(&m.CanAcceptPaymentCallCount, 1)
	if m.CanAcceptPaymentError != nil {
		return false, m.CanAcceptPaymentError
	}
	return m.CanPayResult, nil
}

func (m *MockRentService) IsActive(ctx context.Context, rentID int64) (bool, error) {
	atomic.AddInt32(&m.IsActiveCallCount, 1)
	if m.IsActiveError != nil {
		return false, m.IsActiveError
	}
	return m.ActiveResult, nil
}

func (m *MockRentService) MarkCompleted(ctx context.Context, rentID int64) error {
	atomic.AddInt32(&m.MarkCompletedCallCount, 1)
	return m.MarkCompletedError
}

// ──────────────────────────────────────────────
// MOCK EVENT SINK
// ──────────────────────────────────────────────

// MockEventSink records published audit records and notifications.
type MockEventSink struct {
	mu            sync.RWMutex
	audits        []event.AuditRecord
	notifications []event.Notification

	// Error injection
	PublishAuditError        error
	PublishNotificationError error
}

// NewMockEventSink creates a new mock event sink.
func NewMockEventSink() *MockEventSink {
	return &MockEventSink{}
}

func (m *MockEventSink) PublishAudit(ctx context.Context, record event.AuditRecord) error {
	if m.PublishAuditError != nil {
		return m.PublishAuditError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audits = append(m.audits, record)
	return nil
}

func (m *MockEventSink) PublishNotification(ctx context.Context, notification event.Notification) error {
	if m.PublishNotificationError != nil {
		return m.PublishNotificationError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, notification)
	return nil
}

// Audits returns all recorded audit records.
func (m *MockEventSink) Audits() []event.AuditRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]event.AuditRecord, len(m.audits))
	copy(result, m.audits)
	return result
}

// Notifications returns all recorded notifications.
func (m *MockEventSink) Notifications() []event.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]event.Notification, len(m.notifications))
	copy(result, m.notifications)
	return result
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	// DenyAll makes every acquire attempt fail, simulating a concurrent holder.
	DenyAll bool

	// Counters for verification
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

func (m *MockLockStore) AcquirePaymentLock(ctx context.Context, providerPaymentID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.DenyAll {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[providerPaymentID] {
		return false, nil
	}
	m.locks[providerPaymentID] = true
	return true, nil
}

func (m *MockLockStore) ReleasePaymentLock(ctx context.Context, providerPaymentID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, providerPaymentID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK CACHE STORE
// ──────────────────────────────────────────────

// MockCacheStore is a mock implementation of CacheStoreInterface.
type MockCacheStore struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	// Counters for verification
	GetCallCount        int32
	SetCallCount        int32
	InvalidateCallCount int32

	// Error injection
	GetError error
	SetError error
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{payments: make(map[string]*domain.Payment)}
}

func (m *MockCacheStore) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, nil
	}
	copy := *payment
	return &copy, nil
}

func (m *MockCacheStore) SetPayment(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *payment
	m.payments[payment.ID] = &copy
	return nil
}

func (m *MockCacheStore) InvalidatePayment(ctx context.Context, id string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.payments, id)
	return nil
}

// Cached returns the cached payment for test assertions.
func (m *MockCacheStore) Cached(id string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payments[id]
}
