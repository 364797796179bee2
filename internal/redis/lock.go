package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquirePaymentLock attempts to acquire the processing lock for a payment,
// keyed by provider payment ID. Returns true if the lock was acquired,
// false if a concurrent delivery already holds it.
func (s *LockStore) AcquirePaymentLock(ctx context.Context, providerPaymentID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:payment:%s", providerPaymentID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleasePaymentLock releases the processing lock for a payment.
func (s *LockStore) ReleasePaymentLock(ctx context.Context, providerPaymentID string) error {
	key := fmt.Sprintf("lock:payment:%s", providerPaymentID)

	return s.client.Del(ctx, key).Err()
}
