package repository

import (
	"context"

	"rentpay/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by its internal ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetByProviderPaymentID retrieves a payment by the provider-assigned
	// payment intent ID.
	GetByProviderPaymentID(ctx context.Context, providerPaymentID string) (*domain.Payment, error)

	// Find retrieves a page of payments matching the filter, newest first,
	// along with the total number of matches.
	Find(ctx context.Context, filter domain.PaymentFilter, page, size int) ([]*domain.Payment, int64, error)

	// UpdateStatus unconditionally updates the status of a payment.
	UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error

	// UpdateStatusFrom updates the status only if the payment is still in
	// the expected current status. Returns false when the row was not in
	// that status, which signals a concurrent update.
	UpdateStatusFrom(ctx context.Context, id string, from, to domain.PaymentStatus) (bool, error)

	// Delete removes a payment.
	Delete(ctx context.Context, id string) error
}
