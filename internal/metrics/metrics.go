package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaymentsCreated counts created payments by resulting status.
	PaymentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentpay_payments_created_total",
		Help: "Payments persisted after intent creation, by status",
	}, []string{"status"})

	// WebhookEvents counts processed webhook deliveries by outcome.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentpay_webhook_events_total",
		Help: "Webhook deliveries by event type and outcome",
	}, []string{"type", "outcome"})

	// RentServiceFailures counts rent service calls that came back unavailable.
	RentServiceFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentpay_rent_service_failures_total",
		Help: "Rent service calls that returned unavailable",
	})

	// EventsEmitted counts audit and notification publishes by outcome.
	EventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentpay_events_emitted_total",
		Help: "Audit and notification publishes by channel and outcome",
	}, []string{"channel", "outcome"})
)
