package redis

import (
	"context"
	"time"

	"rentpay/internal/domain"
)

// LockStoreInterface defines the interface for distributed payment locking.
type LockStoreInterface interface {
	AcquirePaymentLock(ctx context.Context, providerPaymentID string, ttl time.Duration) (bool, error)
	ReleasePaymentLock(ctx context.Context, providerPaymentID string) error
}

// CacheStoreInterface defines the interface for payment caching.
type CacheStoreInterface interface {
	GetPayment(ctx context.Context, id string) (*domain.Payment, error)
	SetPayment(ctx context.Context, payment *domain.Payment) error
	InvalidatePayment(ctx context.Context, id string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface  = (*LockStore)(nil)
	_ CacheStoreInterface = (*CacheStore)(nil)
)
