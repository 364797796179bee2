package service

import (
	"errors"
	"net/http"

	"rentpay/internal/provider"
	"rentpay/internal/rentservice"
	"rentpay/internal/repository"
)

var (
	// ErrInvalidAmount is returned when the amount is below the provider minimum.
	ErrInvalidAmount = errors.New("amount must be at least 50 minor units")

	// ErrInvalidCurrency is returned for any currency other than USD.
	ErrInvalidCurrency = errors.New("currency must be USD")

	// ErrInvalidPaymentMethod is returned when the payment method reference is malformed.
	ErrInvalidPaymentMethod = errors.New("invalid payment method reference")

	// ErrInvalidPaymentID is returned when a payment ID is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrInvalidReference is returned when a car, rent or client reference is not positive.
	ErrInvalidReference = errors.New("car, rent and client ids must be positive")

	// ErrPaymentRejected is returned when the provider could not proceed with the payment.
	ErrPaymentRejected = errors.New("provider rejected the payment")

	// ErrRentNotPayable is returned when the rental cannot accept a new payment.
	ErrRentNotPayable = errors.New("rent cannot accept a new payment")

	// ErrRentActive is returned when deleting a payment whose rental is still active.
	ErrRentActive = errors.New("cannot delete payment while rent is active")

	// ErrRefundNotSettled is returned when the provider did not fully settle a refund.
	ErrRefundNotSettled = errors.New("refund was not settled by the provider")

	// ErrWebhookSignature is returned when a webhook payload fails signature verification.
	ErrWebhookSignature = errors.New("webhook signature verification failed")

	// ErrMalformedEvent is returned when a verified webhook payload cannot be interpreted.
	ErrMalformedEvent = errors.New("malformed webhook event")

	// ErrUnknownProviderStatus is returned when the provider reports a status
	// this service has no transition for.
	ErrUnknownProviderStatus = errors.New("unknown provider payment status")
)

// StatusCodeFor maps service and repository errors to the HTTP status code
// recorded in audit records and returned by the HTTP layer. The mapping is
// the single source of truth for the error taxonomy.
func StatusCodeFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	// Not found
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation and rejected operations - Bad Request
	case errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidCurrency),
		errors.Is(err, ErrInvalidPaymentMethod),
		errors.Is(err, ErrInvalidPaymentID),
		errors.Is(err, ErrInvalidReference),
		errors.Is(err, ErrPaymentRejected),
		errors.Is(err, ErrRentNotPayable),
		errors.Is(err, ErrRentActive),
		errors.Is(err, ErrRefundNotSettled):
		return http.StatusBadRequest

	// Authentication
	case errors.Is(err, ErrWebhookSignature):
		return http.StatusUnauthorized

	// Upstream dependency degraded
	case errors.Is(err, rentservice.ErrUnavailable):
		return http.StatusServiceUnavailable

	// Unexpected server-side failures
	case errors.Is(err, ErrUnknownProviderStatus),
		errors.Is(err, ErrMalformedEvent):
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}

// providerDetail extracts the provider-reported status code and message for
// error wrapping, so callers see what the provider actually said.
func providerDetail(err error) string {
	var pErr *provider.Error
	if errors.As(err, &pErr) {
		return pErr.Error()
	}
	return err.Error()
}
