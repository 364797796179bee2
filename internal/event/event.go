package event

import (
	"context"
	"time"

	"rentpay/internal/domain"
)

// ActionType classifies the lifecycle operation behind an audit record.
type ActionType string

const (
	ActionRead   ActionType = "READ"
	ActionCreate ActionType = "CREATE"
	ActionUpdate ActionType = "UPDATE"
	ActionDelete ActionType = "DELETE"
)

// ServicePayment tags audit records produced by this service.
const ServicePayment = "payment"

// AuditRecord describes the outcome of one lifecycle operation. Records are
// append-only; nothing in this service mutates or deletes them.
type AuditRecord struct {
	Actor       string
	Description string
	Action      ActionType
	Service     string
	StatusCode  int
	OccurredAt  time.Time
}

// TriggerType identifies what caused a notification.
type TriggerType string

const (
	TriggerCreate       TriggerType = "CREATE_PAYMENT"
	TriggerRefund       TriggerType = "REFUND_PAYMENT"
	TriggerStatusChange TriggerType = "CHANGE_PAYMENT_STATUS"
)

// Notification is a user-facing message about a payment outcome.
type Notification struct {
	RecipientID int64
	Status      domain.PaymentStatus
	Amount      int64
	Currency    string
	CreatedAt   time.Time
	Trigger     TriggerType
}

// Sink accepts append-only audit and notification messages.
type Sink interface {
	PublishAudit(ctx context.Context, record AuditRecord) error
	PublishNotification(ctx context.Context, notification Notification) error
}
