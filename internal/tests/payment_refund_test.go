package tests

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"rentpay/internal/domain"
	"rentpay/internal/event"
	"rentpay/internal/provider"
	"rentpay/internal/repository"
	"rentpay/internal/service"
)

// ──────────────────────────────────────────────
// 2. REFUNDS
// ──────────────────────────────────────────────

func succeededPayment() *domain.Payment {
	return &domain.Payment{
		ID:                "pay-1",
		ProviderPaymentID: "pi_123",
		Amount:            2500,
		Currency:          "USD",
		PaymentMethodID:   "pm_card_visa",
		Status:            domain.PaymentStatusSucceeded,
		CarID:             1,
		RentID:            10,
		ClientID:          7,
		CreatedAt:         time.Now().UTC(),
	}
}

func TestRefundPayment_SettledRefund_MovesToRefunded(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.repo.AddPayment(succeededPayment())
	f.cache.SetPayment(context.Background(), succeededPayment())
	f.provider.Refund = &provider.Refund{ID: "re_1", Status: provider.RefundStatusSucceeded}

	payment, err := f.service.RefundPayment(context.Background(), "pi_123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.emitter.Flush()

	if payment.Status != domain.PaymentStatusRefunded {
		t.Errorf("expected status REFUNDED, got %s", payment.Status)
	}
	if stored := f.repo.GetPayment("pay-1"); stored.Status != domain.PaymentStatusRefunded {
		t.Errorf("expected stored status REFUNDED, got %s", stored.Status)
	}
	if f.cache.Cached("pay-1") != nil {
		t.Error("expected cache entry to be invalidated")
	}

	notifications := f.sink.Notifications()
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
	if notifications[0].Status != domain.PaymentStatusRefunded {
		t.Errorf("expected notification status REFUNDED, got %s", notifications[0].Status)
	}
	if notifications[0].Trigger != event.TriggerRefund {
		t.Errorf("expected trigger REFUND_PAYMENT, got %s", notifications[0].Trigger)
	}
}

func TestRefundPayment_PendingRefund_StatusUntouched(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.repo.AddPayment(succeededPayment())
	f.provider.Refund = &provider.Refund{ID: "re_1", Status: "pending"}

	_, err := f.service.RefundPayment(context.Background(), "pi_123")
	if !errors.Is(err, service.ErrRefundNotSettled) {
		t.Fatalf("expected ErrRefundNotSettled, got %v", err)
	}
	f.emitter.Flush()

	if stored := f.repo.GetPayment("pay-1"); stored.Status != domain.PaymentStatusSucceeded {
		t.Errorf("expected status to stay SUCCEEDED, got %s", stored.Status)
	}
	if len(f.sink.Notifications()) != 0 {
		t.Errorf("expected no notifications, got %d", len(f.sink.Notifications()))
	}
}

func TestRefundPayment_ProviderError_StatusUntouched(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.repo.AddPayment(succeededPayment())
	f.provider.CreateRefundError = &provider.Error{StatusCode: 400, Code: "charge_already_refunded", Message: "already refunded"}

	_, err := f.service.RefundPayment(context.Background(), "pi_123")
	if !errors.Is(err, service.ErrRefundNotSettled) {
		t.Fatalf("expected ErrRefundNotSettled, got %v", err)
	}
	if stored := f.repo.GetPayment("pay-1"); stored.Status != domain.PaymentStatusSucceeded {
		t.Errorf("expected status to stay SUCCEEDED, got %s", stored.Status)
	}
}

func TestRefundPayment_UnknownProviderID_NotFound(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()

	_, err := f.service.RefundPayment(context.Background(), "pi_missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if service.StatusCodeFor(err) != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", service.StatusCodeFor(err))
	}
	if f.provider.CreateRefundCallCount != 0 {
		t.Errorf("provider should not be called, got %d calls", f.provider.CreateRefundCallCount)
	}
}

func TestRefundPayment_EmptyID_Rejected(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()

	_, err := f.service.RefundPayment(context.Background(), "")
	if !errors.Is(err, service.ErrInvalidPaymentID) {
		t.Fatalf("expected ErrInvalidPaymentID, got %v", err)
	}
}
