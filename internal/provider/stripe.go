package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/refund"
	"github.com/stripe/stripe-go/v74/webhook"
)

// StripeClient implements Client against the Stripe API.
type StripeClient struct {
	webhookSecret string
}

// NewStripeClient configures the Stripe SDK with the API key and returns a
// client that verifies webhooks against the given endpoint secret.
func NewStripeClient(apiKey, webhookSecret string) *StripeClient {
	stripe.Key = apiKey
	return &StripeClient{webhookSecret: webhookSecret}
}

// CreateIntent creates and immediately confirms a payment intent. Redirect
// based payment methods are disallowed so that confirmation cannot park the
// intent on an off-session redirect.
func (c *StripeClient) CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error) {
	piParams := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(params.Amount),
		Currency:      stripe.String(params.Currency),
		PaymentMethod: stripe.String(params.PaymentMethodID),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	piParams.Context = ctx

	pi, err := paymentintent.New(piParams)
	if err != nil {
		return nil, wrapStripeErr(err)
	}
	return toIntent(pi), nil
}

// RetrieveIntent fetches the current state of a payment intent.
func (c *StripeClient) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(id, params)
	if err != nil {
		return nil, wrapStripeErr(err)
	}
	return toIntent(pi), nil
}

// CaptureIntent captures a previously authorized payment intent.
func (c *StripeClient) CaptureIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx

	pi, err := paymentintent.Capture(id, params)
	if err != nil {
		return nil, wrapStripeErr(err)
	}
	return toIntent(pi), nil
}

// CreateRefund refunds the full amount of a payment intent.
func (c *StripeClient) CreateRefund(ctx context.Context, paymentIntentID string) (*Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	params.Context = ctx

	r, err := refund.New(params)
	if err != nil {
		return nil, wrapStripeErr(err)
	}
	return &Refund{ID: r.ID, Status: string(r.Status)}, nil
}

// VerifyWebhook checks the payload signature and decodes the embedded
// payment intent reference.
func (c *StripeClient) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, c.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureVerification, err)
	}

	var object struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(event.Data.Raw, &object); err != nil {
		return nil, fmt.Errorf("decoding event %s object: %w", event.ID, err)
	}

	return &WebhookEvent{
		ID:              event.ID,
		Type:            string(event.Type),
		PaymentIntentID: object.ID,
	}, nil
}

// wrapStripeErr converts a Stripe SDK error into a provider Error carrying
// the remote status code and message.
func wrapStripeErr(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &Error{
			StatusCode: stripeErr.HTTPStatusCode,
			Code:       string(stripeErr.Code),
			Message:    stripeErr.Msg,
		}
	}
	return err
}

func toIntent(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:       pi.ID,
		Status:   string(pi.Status),
		Amount:   pi.Amount,
		Currency: string(pi.Currency),
	}
}

var _ Client = (*StripeClient)(nil)
