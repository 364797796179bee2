package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"rentpay/internal/domain"
)

// CacheStore handles payment caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// PaymentCacheTTL is short because webhook deliveries can change a payment
// status at any time.
const PaymentCacheTTL = 30 * time.Second

const paymentCachePrefix = "cache:payment:"

// cachedPayment is the JSON shape stored in Redis.
type cachedPayment struct {
	ID                string `json:"id"`
	ProviderPaymentID string `json:"provider_payment_id"`
	Amount            int64  `json:"amount"`
	Currency          string `json:"currency"`
	PaymentMethodID   string `json:"payment_method_id"`
	Status            string `json:"status"`
	CarID             int64  `json:"car_id"`
	RentID            int64  `json:"rent_id"`
	ClientID          int64  `json:"client_id"`
	CreatedAt         string `json:"created_at"`
}

// GetPayment retrieves a payment from cache. Returns nil on a miss.
func (s *CacheStore) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	data, err := s.client.Get(ctx, paymentCachePrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var cached cachedPayment
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}

	createdAt, err := time.Parse(time.RFC3339Nano, cached.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &domain.Payment{
		ID:                cached.ID,
		ProviderPaymentID: cached.ProviderPaymentID,
		Amount:            cached.Amount,
		Currency:          cached.Currency,
		PaymentMethodID:   cached.PaymentMethodID,
		Status:            domain.PaymentStatus(cached.Status),
		CarID:             cached.CarID,
		RentID:            cached.RentID,
		ClientID:          cached.ClientID,
		CreatedAt:         createdAt,
	}, nil
}

// SetPayment stores a payment in cache.
func (s *CacheStore) SetPayment(ctx context.Context, payment *domain.Payment) error {
	data, err := json.Marshal(cachedPayment{
		ID:                payment.ID,
		ProviderPaymentID: payment.ProviderPaymentID,
		Amount:            payment.Amount,
		Currency:          payment.Currency,
		PaymentMethodID:   payment.PaymentMethodID,
		Status:            string(payment.Status),
		CarID:             payment.CarID,
		RentID:            payment.RentID,
		ClientID:          payment.ClientID,
		CreatedAt:         payment.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, paymentCachePrefix+payment.ID, data, PaymentCacheTTL).Err()
}

// InvalidatePayment drops a payment from cache after a status change or delete.
func (s *CacheStore) InvalidatePayment(ctx context.Context, id string) error {
	return s.client.Del(ctx, paymentCachePrefix+id).Err()
}
