package tests

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"rentpay/internal/domain"
	"rentpay/internal/rentservice"
	"rentpay/internal/repository"
	"rentpay/internal/service"
)

// ──────────────────────────────────────────────
// 3. DELETION
// ──────────────────────────────────────────────

func TestDeletePayment_InactiveRent_Removed(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.repo.AddPayment(succeededPayment())
	f.rent.ActiveResult = false

	payment, err := f.service.DeletePayment(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payment.ID != "pay-1" {
		t.Errorf("expected deleted payment pay-1, got %s", payment.ID)
	}
	if f.repo.Count() != 0 {
		t.Errorf("expected payment to be removed, %d remain", f.repo.Count())
	}
}

func TestDeletePayment_ActiveRent_Rejected(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.repo.AddPayment(succeededPayment())
	f.rent.ActiveResult = true

	_, err := f.service.DeletePayment(context.Background(), "pay-1")
	if !errors.Is(err, service.ErrRentActive) {
		t.Fatalf("expected ErrRentActive, got %v", err)
	}
	if f.repo.Count() != 1 {
		t.Errorf("expected payment to be kept, got %d", f.repo.Count())
	}
	if f.repo.DeleteCallCount != 0 {
		t.Errorf("delete should not reach the repository, got %d calls", f.repo.DeleteCallCount)
	}
}

func TestDeletePayment_RentServiceDown_PaymentUntouched(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.repo.AddPayment(succeededPayment())
	f.rent.IsActiveError = rentservice.ErrUnavailable

	_, err := f.service.DeletePayment(context.Background(), "pay-1")
	if !errors.Is(err, rentservice.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if service.StatusCodeFor(err) != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", service.StatusCodeFor(err))
	}
	if f.repo.Count() != 1 {
		t.Errorf("expected payment to be kept, got %d", f.repo.Count())
	}
}

func TestDeletePayment_NotFound(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()

	_, err := f.service.DeletePayment(context.Background(), "pay-missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// The rent service is never consulted for a payment that does not exist.
	if f.rent.IsActiveCallCount != 0 {
		t.Errorf("rent service should not be called, got %d calls", f.rent.IsActiveCallCount)
	}
}

// ──────────────────────────────────────────────
// 4. QUERIES
// ──────────────────────────────────────────────

func TestGetPaymentByID_CacheMissThenHit(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.repo.AddPayment(succeededPayment())

	// First read misses the cache and populates it.
	payment, err := f.service.GetPaymentByID(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.ID != "pay-1" {
		t.Errorf("expected payment pay-1, got %s", payment.ID)
	}
	if f.cache.SetCallCount != 1 {
		t.Errorf("expected 1 cache store, got %d", f.cache.SetCallCount)
	}
	if f.cache.Cached("pay-1") == nil {
		t.Fatal("expected payment to be cached")
	}

	// Second read is served from the cache.
	if _, err := f.service.GetPaymentByID(context.Background(), "pay-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.cache.GetCallCount != 2 {
		t.Errorf("expected 2 cache lookups, got %d", f.cache.GetCallCount)
	}
	if f.cache.SetCallCount != 1 {
		t.Errorf("cache hit should not store again, got %d stores", f.cache.SetCallCount)
	}
}

func TestGetPaymentByID_CacheFailure_FallsThroughToRepository(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.repo.AddPayment(succeededPayment())
	f.cache.GetError = errors.New("redis: connection refused")

	payment, err := f.service.GetPaymentByID(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.ID != "pay-1" {
		t.Errorf("expected payment pay-1, got %s", payment.ID)
	}
}

func TestGetPayments_FilterByRent(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.repo.AddPayment(succeededPayment())
	other := succeededPayment()
	other.ID = "pay-2"
	other.ProviderPaymentID = "pi_456"
	other.RentID = 99
	f.repo.AddPayment(other)

	rentID := int64(99)
	payments, total, err := f.service.GetPayments(context.Background(), domain.PaymentFilter{RentID: &rentID}, 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(payments) != 1 {
		t.Fatalf("expected 1 match, got %d (total %d)", len(payments), total)
	}
	if payments[0].ID != "pay-2" {
		t.Errorf("expected pay-2, got %s", payments[0].ID)
	}
}

func TestGetPaymentByProviderID(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.repo.AddPayment(succeededPayment())

	payment, err := f.service.GetPaymentByProviderID(context.Background(), "pi_123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.ID != "pay-1" {
		t.Errorf("expected payment pay-1, got %s", payment.ID)
	}

	if _, err := f.service.GetPaymentByProviderID(context.Background(), "pi_nope"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
