package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"rentpay/internal/domain"
	"rentpay/internal/event"
	"rentpay/internal/metrics"
	"rentpay/internal/provider"
	"rentpay/internal/redis"
	"rentpay/internal/rentservice"
	"rentpay/internal/repository"
)

// eventStatus maps provider webhook event types to target payment statuses.
// Event types outside this table are acknowledged but not applied.
var eventStatus = map[string]domain.PaymentStatus{
	"payment_intent.requires_action": domain.PaymentStatusRequiresAction,
	"payment_intent.succeeded":       domain.PaymentStatusSucceeded,
	"payment_intent.canceled":        domain.PaymentStatusCanceled,
	"payment_intent.payment_failed":  domain.PaymentStatusFailed,
}

// paymentLockTTL bounds how long a webhook delivery may hold the per-payment
// processing lock.
const paymentLockTTL = 10 * time.Second

// WebhookService consumes provider-delivered payment status events. The
// provider delivers at least once and in no particular order, so processing
// must be safe to run twice for the same event.
type WebhookService struct {
	repo     repository.PaymentRepository
	provider provider.Client
	rent     rentservice.Client
	emitter  *event.Emitter
	locks    redis.LockStoreInterface
	cache    redis.CacheStoreInterface
}

// NewWebhookService creates a new WebhookService. Locks and cache may be nil.
func NewWebhookService(
	repo repository.PaymentRepository,
	providerClient provider.Client,
	rent rentservice.Client,
	emitter *event.Emitter,
	locks redis.LockStoreInterface,
	cache redis.CacheStoreInterface,
) *WebhookService {
	return &WebhookService{
		repo:     repo,
		provider: providerClient,
		rent:     rent,
		emitter:  emitter,
		locks:    locks,
		cache:    cache,
	}
}

// HandleStatusEvent verifies a signed provider payload and applies at most
// one state transition. Duplicate and out-of-order deliveries are absorbed
// by the idempotency guard and reported as success so the provider stops
// retrying them.
func (s *WebhookService) HandleStatusEvent(ctx context.Context, payload []byte, signature string) (*domain.Payment, error) {
	payment, applied, err := s.handleStatusEvent(ctx, payload, signature)
	if err != nil {
		s.emitter.Audit(auditActor, fmt.Sprintf("error when changing payment status from webhook: %v", err), event.ActionUpdate, StatusCodeFor(err))
		return nil, err
	}

	s.emitter.Audit(auditActor, "payment status webhook processed successfully", event.ActionUpdate, http.StatusOK)

	if applied {
		s.emitter.Notify(event.Notification{
			RecipientID: payment.ClientID,
			Status:      payment.Status,
			Amount:      payment.Amount,
			Currency:    payment.Currency,
			CreatedAt:   payment.CreatedAt,
			Trigger:     event.TriggerStatusChange,
		})
	}

	return payment, nil
}

func (s *WebhookService) handleStatusEvent(ctx context.Context, payload []byte, signature string) (*domain.Payment, bool, error) {
	evt, err := s.provider.VerifyWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, provider.ErrSignatureVerification) {
			return nil, false, fmt.Errorf("%w: %v", ErrWebhookSignature, err)
		}
		return nil, false, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	target, known := eventStatus[evt.Type]
	if !known {
		log.Printf("[WEBHOOK] ignoring event %s with type %q", evt.ID, evt.Type)
		metrics.WebhookEvents.WithLabelValues(evt.Type, "ignored").Inc()
		return nil, false, nil
	}

	if evt.PaymentIntentID == "" {
		return nil, false, fmt.Errorf("%w: event %s carries no payment intent id", ErrMalformedEvent, evt.ID)
	}

	if s.locks != nil {
		acquired, err := s.locks.AcquirePaymentLock(ctx, evt.PaymentIntentID, paymentLockTTL)
		if err != nil {
			log.Printf("[WEBHOOK] lock error for intent %s, relying on conditional write: %v", evt.PaymentIntentID, err)
		} else if !acquired {
			// A concurrent delivery is already processing this payment.
			// The provider will redeliver if that one fails.
			log.Printf("[WEBHOOK] skipping event %s, intent %s is being processed concurrently", evt.ID, evt.PaymentIntentID)
			metrics.WebhookEvents.WithLabelValues(evt.Type, "skipped").Inc()
			return nil, false, nil
		} else {
			defer func() {
				if err := s.locks.ReleasePaymentLock(ctx, evt.PaymentIntentID); err != nil {
					log.Printf("[WEBHOOK] releasing lock for intent %s: %v", evt.PaymentIntentID, err)
				}
			}()
		}
	}

	payment, err := s.repo.GetByProviderPaymentID(ctx, evt.PaymentIntentID)
	if err != nil {
		// The provider knows about a payment this system does not.
		return nil, false, fmt.Errorf("resolving intent %s: %w", evt.PaymentIntentID, err)
	}

	// Idempotency guard: duplicate deliveries and transitions the state
	// graph forbids (e.g. leaving a terminal status) are no-ops.
	if payment.Status == target || !payment.Status.CanTransitionTo(target) {
		log.Printf("[WEBHOOK] no-op event %s: payment %s already in status %s", evt.ID, payment.ID, payment.Status)
		metrics.WebhookEvents.WithLabelValues(evt.Type, "noop").Inc()
		return payment, false, nil
	}

	if target == domain.PaymentStatusSucceeded {
		if err := s.rent.MarkCompleted(ctx, payment.RentID); err != nil {
			metrics.RentServiceFailures.Inc()
			return nil, false, fmt.Errorf("completing rent %d for payment %s: %w", payment.RentID, payment.ID, err)
		}
	}

	updated, err := s.repo.UpdateStatusFrom(ctx, payment.ID, payment.Status, target)
	if err != nil {
		return nil, false, err
	}
	if !updated {
		// Lost the race against a concurrent delivery; its transition won.
		log.Printf("[WEBHOOK] payment %s changed concurrently, dropping event %s", payment.ID, evt.ID)
		metrics.WebhookEvents.WithLabelValues(evt.Type, "noop").Inc()
		return payment, false, nil
	}

	payment.Status = target
	if s.cache != nil {
		if err := s.cache.InvalidatePayment(ctx, payment.ID); err != nil {
			log.Printf("[CACHE] invalidate failed for payment %s: %v", payment.ID, err)
		}
	}

	metrics.WebhookEvents.WithLabelValues(evt.Type, "applied").Inc()
	return payment, true, nil
}
