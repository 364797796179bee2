package service

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"rentpay/internal/domain"
	"rentpay/internal/event"
	"rentpay/internal/provider"
	"rentpay/internal/redis"
	"rentpay/internal/rentservice"
	"rentpay/internal/repository"
)

// auditActor identifies this service in audit records. Caller identity is
// handled by the API gateway and is not available here.
const auditActor = "payment-service"

const (
	minAmount         = 50
	supportedCurrency = "USD"
	methodPrefix      = "pm_"
)

// PaymentService composes the payment store, provider client, rent service
// and event emitter into the user-facing payment operations.
type PaymentService struct {
	repo     repository.PaymentRepository
	provider provider.Client
	rent     rentservice.Client
	emitter  *event.Emitter
	cache    redis.CacheStoreInterface
}

// NewPaymentService creates a new PaymentService. The cache may be nil.
func NewPaymentService(
	repo repository.PaymentRepository,
	providerClient provider.Client,
	rent rentservice.Client,
	emitter *event.Emitter,
	cache redis.CacheStoreInterface,
) *PaymentService {
	return &PaymentService{
		repo:     repo,
		provider: providerClient,
		rent:     rent,
		emitter:  emitter,
		cache:    cache,
	}
}

// GetPayments retrieves a page of payments matching the filter.
func (s *PaymentService) GetPayments(ctx context.Context, filter domain.PaymentFilter, page, size int) ([]*domain.Payment, int64, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > 100 {
		size = 10
	}

	payments, total, err := s.repo.Find(ctx, filter, page, size)
	if err != nil {
		s.emitter.Audit(auditActor, fmt.Sprintf("an error occurred while listing payments: %v", err), event.ActionRead, StatusCodeFor(err))
		return nil, 0, err
	}

	s.emitter.Audit(auditActor, "payments listed successfully", event.ActionRead, http.StatusOK)
	return payments, total, nil
}

// GetPaymentByID retrieves a payment by its internal ID.
func (s *PaymentService) GetPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		err := ErrInvalidPaymentID
		s.emitter.Audit(auditActor, fmt.Sprintf("an error occurred while getting a payment: %v", err), event.ActionRead, StatusCodeFor(err))
		return nil, err
	}

	if s.cache != nil {
		if cached, err := s.cache.GetPayment(ctx, paymentID); err != nil {
			log.Printf("[CACHE] lookup failed for payment %s: %v", paymentID, err)
		} else if cached != nil {
			s.emitter.Audit(auditActor, fmt.Sprintf("payment %s received successfully", paymentID), event.ActionRead, http.StatusOK)
			return cached, nil
		}
	}

	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		s.emitter.Audit(auditActor, fmt.Sprintf("an error occurred while getting payment %s: %v", paymentID, err), event.ActionRead, StatusCodeFor(err))
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetPayment(ctx, payment); err != nil {
			log.Printf("[CACHE] store failed for payment %s: %v", paymentID, err)
		}
	}

	s.emitter.Audit(auditActor, fmt.Sprintf("payment %s received successfully", paymentID), event.ActionRead, http.StatusOK)
	return payment, nil
}

// GetPaymentByProviderID retrieves a payment by the provider-assigned intent ID.
func (s *PaymentService) GetPaymentByProviderID(ctx context.Context, providerPaymentID string) (*domain.Payment, error) {
	if providerPaymentID == "" {
		err := ErrInvalidPaymentID
		s.emitter.Audit(auditActor, fmt.Sprintf("an error occurred while getting a payment: %v", err), event.ActionRead, StatusCodeFor(err))
		return nil, err
	}

	payment, err := s.repo.GetByProviderPaymentID(ctx, providerPaymentID)
	if err != nil {
		s.emitter.Audit(auditActor, fmt.Sprintf("an error occurred while getting payment with provider id %s: %v", providerPaymentID, err), event.ActionRead, StatusCodeFor(err))
		return nil, err
	}

	s.emitter.Audit(auditActor, fmt.Sprintf("payment with provider id %s received successfully", providerPaymentID), event.ActionRead, http.StatusOK)
	return payment, nil
}

// CreatePaymentRequest contains the parameters for creating a payment.
type CreatePaymentRequest struct {
	Amount          int64
	Currency        string
	PaymentMethodID string
	CarID           int64
	RentID          int64
	ClientID        int64
}

// CreatePayment checks rent eligibility, submits a payment intent to the
// provider and runs the resulting status through the state machine. On
// success the persisted payment is returned and a notification emitted
// unless the provider reported the intent as canceled.
func (s *PaymentService) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*domain.Payment, error) {
	payment, err := s.createPayment(ctx, req)
	if err != nil {
		s.emitter.Audit(auditActor, fmt.Sprintf("error when creating a payment for rent %d: %v", req.RentID, err), event.ActionCreate, StatusCodeFor(err))
		return nil, err
	}

	s.emitter.Audit(auditActor, fmt.Sprintf("payment %s created successfully with status %s", payment.ID, payment.Status), event.ActionCreate, http.StatusCreated)

	if payment.Status != domain.PaymentStatusCanceled {
		notifyStatus := domain.PaymentStatusProcessing
		if payment.Status == domain.PaymentStatusSucceeded {
			notifyStatus = domain.PaymentStatusSucceeded
		}
		s.emitter.Notify(event.Notification{
			RecipientID: payment.ClientID,
			Status:      notifyStatus,
			Amount:      payment.Amount,
			Currency:    payment.Currency,
			CreatedAt:   payment.CreatedAt,
			Trigger:     event.TriggerCreate,
		})
	}

	return payment, nil
}

func (s *PaymentService) createPayment(ctx context.Context, req CreatePaymentRequest) (*domain.Payment, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	canPay, err := s.rent.CanAcceptPayment(ctx, req.RentID)
	if err != nil {
		return nil, fmt.Errorf("checking rent %d eligibility: %w", req.RentID, err)
	}
	if !canPay {
		return nil, fmt.Errorf("%w: rent id %d", ErrRentNotPayable, req.RentID)
	}

	intent, err := s.provider.CreateIntent(ctx, provider.CreateIntentParams{
		Amount:          req.Amount,
		Currency:        strings.ToLower(req.Currency),
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPaymentRejected, providerDetail(err))
	}

	payment := &domain.Payment{
		ID:              uuid.New().String(),
		Amount:          req.Amount,
		Currency:        req.Currency,
		PaymentMethodID: req.PaymentMethodID,
		Status:          domain.PaymentStatusPendingCreate,
		CarID:           req.CarID,
		RentID:          req.RentID,
		ClientID:        req.ClientID,
	}

	if err := s.applyIntentStatus(ctx, payment, intent); err != nil {
		return nil, err
	}

	return payment, nil
}

// RefundPayment refunds the payment identified by provider intent ID. The
// status moves to REFUNDED only when the provider reports the refund as
// fully settled; any other outcome leaves the payment untouched.
func (s *PaymentService) RefundPayment(ctx context.Context, providerPaymentID string) (*domain.Payment, error) {
	payment, err := s.refundPayment(ctx, providerPaymentID)
	if err != nil {
		s.emitter.Audit(auditActor, fmt.Sprintf("error when refunding payment with provider id %s: %v", providerPaymentID, err), event.ActionUpdate, StatusCodeFor(err))
		return nil, err
	}

	s.emitter.Audit(auditActor, fmt.Sprintf("payment with provider id %s refunded successfully", providerPaymentID), event.ActionUpdate, http.StatusOK)
	s.emitter.Notify(event.Notification{
		RecipientID: payment.ClientID,
		Status:      domain.PaymentStatusRefunded,
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		CreatedAt:   payment.CreatedAt,
		Trigger:     event.TriggerRefund,
	})

	return payment, nil
}

func (s *PaymentService) refundPayment(ctx context.Context, providerPaymentID string) (*domain.Payment, error) {
	if providerPaymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	payment, err := s.repo.GetByProviderPaymentID(ctx, providerPaymentID)
	if err != nil {
		return nil, err
	}

	refund, err := s.provider.CreateRefund(ctx, payment.ProviderPaymentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRefundNotSettled, providerDetail(err))
	}
	if refund.Status != provider.RefundStatusSucceeded {
		return nil, fmt.Errorf("%w: refund status %q", ErrRefundNotSettled, refund.Status)
	}

	if err := s.repo.UpdateStatus(ctx, payment.ID, domain.PaymentStatusRefunded); err != nil {
		return nil, err
	}
	payment.Status = domain.PaymentStatusRefunded

	s.invalidate(ctx, payment.ID)
	return payment, nil
}

// DeletePayment removes a payment after checking that the associated rental
// is not currently active. An unavailable rent service blocks the delete.
func (s *PaymentService) DeletePayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	payment, err := s.deletePayment(ctx, paymentID)
	if err != nil {
		s.emitter.Audit(auditActor, fmt.Sprintf("an error occurred while deleting payment %s: %v", paymentID, err), event.ActionDelete, StatusCodeFor(err))
		return nil, err
	}

	s.emitter.Audit(auditActor, fmt.Sprintf("payment %s deleted successfully", paymentID), event.ActionDelete, http.StatusOK)
	return payment, nil
}

func (s *PaymentService) deletePayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	active, err := s.rent.IsActive(ctx, payment.RentID)
	if err != nil {
		return nil, fmt.Errorf("checking rent %d activity: %w", payment.RentID, err)
	}
	if active {
		return nil, fmt.Errorf("%w: rent id %d", ErrRentActive, payment.RentID)
	}

	if err := s.repo.Delete(ctx, payment.ID); err != nil {
		return nil, err
	}

	s.invalidate(ctx, payment.ID)
	return payment, nil
}

// invalidate drops a payment from cache, logging failures.
func (s *PaymentService) invalidate(ctx context.Context, paymentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePayment(ctx, paymentID); err != nil {
		log.Printf("[CACHE] invalidate failed for payment %s: %v", paymentID, err)
	}
}

func validateCreateRequest(req CreatePaymentRequest) error {
	if req.Amount < minAmount {
		return ErrInvalidAmount
	}
	if req.Currency != supportedCurrency {
		return ErrInvalidCurrency
	}
	if !strings.HasPrefix(req.PaymentMethodID, methodPrefix) {
		return ErrInvalidPaymentMethod
	}
	if req.CarID <= 0 || req.RentID <= 0 || req.ClientID <= 0 {
		return ErrInvalidReference
	}
	return nil
}
