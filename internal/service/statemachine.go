package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"rentpay/internal/domain"
	"rentpay/internal/metrics"
	"rentpay/internal/provider"
)

// applyIntentStatus runs the provider's intent-creation response through the
// state machine and persists the payment. The provider intent ID is bound to
// the payment here, exactly once, before any transition away from
// PENDING_CREATE.
//
// A SUCCEEDED payment is persisted before the rent service is asked to mark
// the rental completed: if that downstream call fails the error is surfaced,
// but the payment stays SUCCEEDED. There is no compensation.
func (s *PaymentService) applyIntentStatus(ctx context.Context, payment *domain.Payment, intent *provider.Intent) error {
	payment.ProviderPaymentID = intent.ID

	switch intent.Status {
	case provider.IntentStatusRequiresPaymentMethod:
		return fmt.Errorf("%w: a valid payment method is required", ErrPaymentRejected)

	case provider.IntentStatusRequiresConfirmation:
		return fmt.Errorf("%w: the payment requires confirmation", ErrPaymentRejected)

	case provider.IntentStatusRequiresAction:
		payment.Status = domain.PaymentStatusRequiresAction

	case provider.IntentStatusRequiresCapture:
		log.Printf("[PAYMENT] capturing intent %s", intent.ID)
		fresh, err := s.provider.RetrieveIntent(ctx, intent.ID)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrPaymentRejected, providerDetail(err))
		}
		if _, err := s.provider.CaptureIntent(ctx, fresh.ID); err != nil {
			return fmt.Errorf("%w: %s", ErrPaymentRejected, providerDetail(err))
		}
		payment.Status = domain.PaymentStatusSucceeded

	case provider.IntentStatusProcessing:
		payment.Status = domain.PaymentStatusProcessing

	case provider.IntentStatusCanceled:
		payment.Status = domain.PaymentStatusCanceled

	case provider.IntentStatusSucceeded:
		payment.Status = domain.PaymentStatusSucceeded

	default:
		return fmt.Errorf("%w: %q", ErrUnknownProviderStatus, intent.Status)
	}

	payment.CreatedAt = time.Now().UTC()
	if err := s.repo.Create(ctx, payment); err != nil {
		return err
	}
	metrics.PaymentsCreated.WithLabelValues(string(payment.Status)).Inc()

	if payment.Status == domain.PaymentStatusSucceeded {
		if err := s.rent.MarkCompleted(ctx, payment.RentID); err != nil {
			metrics.RentServiceFailures.Inc()
			return fmt.Errorf("payment %s succeeded but completing rent %d failed: %w", payment.ID, payment.RentID, err)
		}
	}

	return nil
}
