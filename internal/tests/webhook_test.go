package tests

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"rentpay/internal/domain"
	"rentpay/internal/event"
	"rentpay/internal/provider"
	"rentpay/internal/rentservice"
	"rentpay/internal/service"
)

// ──────────────────────────────────────────────
// 5. WEBHOOK PROCESSING
// ──────────────────────────────────────────────

type webhookFixture struct {
	repo     *MockPaymentRepository
	provider *MockProvider
	rent     *MockRentService
	sink     *MockEventSink
	locks    *MockLockStore
	cache    *MockCacheStore
	emitter  *event.Emitter
	service  *service.WebhookService
}

func newWebhookFixture() *webhookFixture {
	f := &webhookFixture{
		repo:     NewMockPaymentRepository(),
		provider: NewMockProvider(),
		rent:     NewMockRentService(),
		sink:     NewMockEventSink(),
		locks:    NewMockLockStore(),
		cache:    NewMockCacheStore(),
	}
	f.emitter = event.NewEmitter(f.sink)
	f.service = service.NewWebhookService(f.repo, f.provider, f.rent, f.emitter, f.locks, f.cache)
	return f
}

func processingPayment() *domain.Payment {
	p := succeededPayment()
	p.Status = domain.PaymentStatusProcessing
	return p
}

func (f *webhookFixture) deliver(t *testing.T, eventType string) (*domain.Payment, error) {
	t.Helper()
	f.provider.WebhookEvent = &provider.WebhookEvent{
		ID:              "evt_1",
		Type:            eventType,
		PaymentIntentID: "pi_123",
	}
	return f.service.HandleStatusEvent(context.Background(), []byte(`{}`), "sig")
}

func TestWebhook_SucceededEvent_AppliesTransition(t *testing.T) {
	t.Parallel()

	f := newWebhookFixture()
	f.repo.AddPayment(processingPayment())
	f.cache.SetPayment(context.Background(), processingPayment())

	payment, err := f.deliver(t, "payment_intent.succeeded")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.emitter.Flush()

	if payment.Status != domain.PaymentStatusSucceeded {
		t.Errorf("expected status SUCCEEDED, got %s", payment.Status)
	}
	if stored := f.repo.GetPayment("pay-1"); stored.Status != domain.PaymentStatusSucceeded {
		t.Errorf("expected stored status SUCCEEDED, got %s", stored.Status)
	}
	if f.rent.MarkCompletedCallCount != 1 {
		t.Errorf("expected rent to be completed once, got %d calls", f.rent.MarkCompletedCallCount)
	}
	if f.cache.Cached("pay-1") != nil {
		t.Error("expected cache entry to be invalidated")
	}
	if f.locks.ReleaseCallCount != 1 {
		t.Errorf("expected the lock to be released, got %d releases", f.locks.ReleaseCallCount)
	}

	notifications := f.sink.Notifications()
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
	if notifications[0].Trigger != event.TriggerStatusChange {
		t.Errorf("expected trigger CHANGE_PAYMENT_STATUS, got %s", notifications[0].Trigger)
	}
}

func TestWebhook_DuplicateDelivery_NoSecondSideEffects(t *testing.T) {
	t.Parallel()

	f := newWebhookFixture()
	payment := processingPayment()
	payment.Status = domain.PaymentStatusSucceeded
	f.repo.AddPayment(payment)

	// The payment already reached SUCCEEDED; redelivery must be absorbed.
	result, err := f.deliver(t, "payment_intent.succeeded")
	if err != nil {
		t.Fatalf("duplicate delivery must not error: %v", err)
	}
	f.emitter.Flush()

	if result.Status != domain.PaymentStatusSucceeded {
		t.Errorf("expected status SUCCEEDED, got %s", result.Status)
	}
	if f.rent.MarkCompletedCallCount != 0 {
		t.Errorf("rent must not be completed twice, got %d calls", f.rent.MarkCompletedCallCount)
	}
	if f.repo.UpdateStatusFromCallCount != 0 {
		t.Errorf("no status update expected, got %d calls", f.repo.UpdateStatusFromCallCount)
	}
	if len(f.sink.Notifications()) != 0 {
		t.Errorf("expected no notifications, got %d", len(f.sink.Notifications()))
	}
}

func TestWebhook_TerminalStatus_IgnoresFurtherEvents(t *testing.T) {
	t.Parallel()

	f := newWebhookFixture()
	payment := processingPayment()
	payment.Status = domain.PaymentStatusCanceled
	f.repo.AddPayment(payment)

	result, err := f.deliver(t, "payment_intent.succeeded")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != domain.PaymentStatusCanceled {
		t.Errorf("expected status to stay CANCELED, got %s", result.Status)
	}
	if f.rent.MarkCompletedCallCount != 0 {
		t.Errorf("rent must not be completed, got %d calls", f.rent.MarkCompletedCallCount)
	}
}

func TestWebhook_UnknownEventType_Acknowledged(t *testing.T) {
	t.Parallel()

	f := newWebhookFixture()
	f.repo.AddPayment(processingPayment())

	payment, err := f.deliver(t, "charge.dispute.created")
	if err != nil {
		t.Fatalf("unknown event types must not error: %v", err)
	}
	if payment != nil {
		t.Errorf("expected no payment for an unrecognized event, got %v", payment)
	}
	if stored := f.repo.GetPayment("pay-1"); stored.Status != domain.PaymentStatusProcessing {
		t.Errorf("expected status to stay PROCESSING, got %s", stored.Status)
	}
}

func TestWebhook_InvalidSignature_Unauthorized(t *testing.T) {
	t.Parallel()

	f := newWebhookFixture()
	f.provider.VerifyWebhookError = provider.ErrSignatureVerification

	_, err := f.service.HandleStatusEvent(context.Background(), []byte(`{}`), "bad-sig")
	if !errors.Is(err, service.ErrWebhookSignature) {
		t.Fatalf("expected ErrWebhookSignature, got %v", err)
	}
	if service.StatusCodeFor(err) != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", service.StatusCodeFor(err))
	}
}

func TestWebhook_MissingIntentID_Malformed(t *testing.T) {
	t.Parallel()

	f := newWebhookFixture()
	f.provider.WebhookEvent = &provider.WebhookEvent{
		ID:   "evt_1",
		Type: "payment_intent.succeeded",
	}

	_, err := f.service.HandleStatusEvent(context.Background(), []byte(`{}`), "sig")
	if !errors.Is(err, service.ErrMalformedEvent) {
		t.Fatalf("expected ErrMalformedEvent, got %v", err)
	}
}

func TestWebhook_UnknownPayment_NotFound(t *testing.T) {
	t.Parallel()

	f := newWebhookFixture()

	_, err := f.deliver(t, "payment_intent.succeeded")
	if service.StatusCodeFor(err) != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d (err %v)", service.StatusCodeFor(err), err)
	}
}

func TestWebhook_RentCompletionFails_TransitionNotPersisted(t *testing.T) {
	t.Parallel()

	f := newWebhookFixture()
	f.repo.AddPayment(processingPayment())
	f.rent.MarkCompletedError = rentservice.ErrUnavailable

	_, err := f.deliver(t, "payment_intent.succeeded")
	if !errors.Is(err, rentservice.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	f.emitter.Flush()

	// The transition is withheld so the provider redelivers the event.
	if stored := f.repo.GetPayment("pay-1"); stored.Status != domain.PaymentStatusProcessing {
		t.Errorf("expected status to stay PROCESSING, got %s", stored.Status)
	}
	if f.repo.UpdateStatusFromCallCount != 0 {
		t.Errorf("no status update expected, got %d calls", f.repo.UpdateStatusFromCallCount)
	}
	if len(f.sink.Notifications()) != 0 {
		t.Errorf("expected no notifications, got %d", len(f.sink.Notifications()))
	}
}

func TestWebhook_LockHeldElsewhere_Skipped(t *testing.T) {
	t.Parallel()

	f := newWebhookFixture()
	f.repo.AddPayment(processingPayment())
	f.locks.DenyAll = true

	payment, err := f.deliver(t, "payment_intent.succeeded")
	if err != nil {
		t.Fatalf("a held lock must not error: %v", err)
	}
	if payment != nil {
		t.Errorf("expected no payment when skipping, got %v", payment)
	}
	if stored := f.repo.GetPayment("pay-1"); stored.Status != domain.PaymentStatusProcessing {
		t.Errorf("expected status to stay PROCESSING, got %s", stored.Status)
	}
}

func TestWebhook_LockStoreDown_FallsBackToConditionalWrite(t *testing.T) {
	t.Parallel()

	f := newWebhookFixture()
	f.repo.AddPayment(processingPayment())
	f.locks.AcquireError = errors.New("redis: connection refused")

	payment, err := f.deliver(t, "payment_intent.succeeded")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.Status != domain.PaymentStatusSucceeded {
		t.Errorf("expected status SUCCEEDED, got %s", payment.Status)
	}
	if f.repo.UpdateStatusFromCallCount != 1 {
		t.Errorf("expected 1 conditional update, got %d", f.repo.UpdateStatusFromCallCount)
	}
}

func TestWebhook_PaymentFailedEvent_AppliesFailed(t *testing.T) {
	t.Parallel()

	f := newWebhookFixture()
	f.repo.AddPayment(processingPayment())

	payment, err := f.deliver(t, "payment_intent.payment_failed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.Status != domain.PaymentStatusFailed {
		t.Errorf("expected status FAILED, got %s", payment.Status)
	}
	if f.rent.MarkCompletedCallCount != 0 {
		t.Errorf("rent must not be completed for a failed payment, got %d calls", f.rent.MarkCompletedCallCount)
	}
}
