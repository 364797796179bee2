package provider

import (
	"context"
	"errors"
	"fmt"
)

// Provider-reported payment intent statuses.
const (
	IntentStatusRequiresPaymentMethod = "requires_payment_method"
	IntentStatusRequiresConfirmation  = "requires_confirmation"
	IntentStatusRequiresAction        = "requires_action"
	IntentStatusRequiresCapture       = "requires_capture"
	IntentStatusProcessing            = "processing"
	IntentStatusCanceled              = "canceled"
	IntentStatusSucceeded             = "succeeded"
)

// RefundStatusSucceeded is the only refund status that settles a refund.
const RefundStatusSucceeded = "succeeded"

// ErrSignatureVerification is returned by VerifyWebhook when the payload
// signature does not match the shared webhook secret.
var ErrSignatureVerification = errors.New("webhook signature verification failed")

// Intent is the provider-side representation of an attempted charge.
type Intent struct {
	ID       string
	Status   string
	Amount   int64
	Currency string
}

// Refund is the provider-side representation of a refund.
type Refund struct {
	ID     string
	Status string
}

// WebhookEvent is a verified provider notification of an intent status change.
type WebhookEvent struct {
	ID              string
	Type            string
	PaymentIntentID string
}

// CreateIntentParams holds the parameters for creating a payment intent.
type CreateIntentParams struct {
	Amount          int64
	Currency        string
	PaymentMethodID string
}

// Client is the interface for the payment provider.
type Client interface {
	// CreateIntent creates and immediately confirms a payment intent.
	CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error)

	// RetrieveIntent fetches the current state of a payment intent.
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)

	// CaptureIntent captures a previously authorized payment intent.
	CaptureIntent(ctx context.Context, id string) (*Intent, error)

	// CreateRefund refunds the full amount of a payment intent.
	CreateRefund(ctx context.Context, paymentIntentID string) (*Refund, error)

	// VerifyWebhook checks the payload signature and decodes the event.
	// Returns ErrSignatureVerification when the signature is invalid.
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// Error carries the provider-reported status code and message for a failed
// remote call.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider error, status code: {%d}; code: {%s}; message: {%s}", e.StatusCode, e.Code, e.Message)
}
