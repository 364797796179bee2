package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"rentpay/internal/event"
)

// Stream keys for the audit and notification channels.
const (
	auditStream        = "stream:payments:audit"
	notificationStream = "stream:payments:notifications"
)

// EventStore publishes audit records and notifications to Redis Streams.
// Streams give the downstream consumers an append-only, at-least-once
// channel without requiring a synchronous acknowledgement from this service.
type EventStore struct {
	client *redis.Client
}

// NewEventStore creates a new EventStore.
func NewEventStore(client *redis.Client) *EventStore {
	return &EventStore{client: client}
}

// PublishAudit appends one audit record to the audit stream.
func (s *EventStore) PublishAudit(ctx context.Context, record event.AuditRecord) error {
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: auditStream,
		Values: map[string]any{
			"actor":       record.Actor,
			"description": record.Description,
			"action":      string(record.Action),
			"service":     record.Service,
			"status_code": strconv.Itoa(record.StatusCode),
			"occurred_at": record.OccurredAt.Format(time.RFC3339Nano),
		},
	}).Err()
}

// PublishNotification appends one notification to the notification stream.
func (s *EventStore) PublishNotification(ctx context.Context, notification event.Notification) error {
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: notificationStream,
		Values: map[string]any{
			"recipient_id": strconv.FormatInt(notification.RecipientID, 10),
			"status":       string(notification.Status),
			"amount":       strconv.FormatInt(notification.Amount, 10),
			"currency":     notification.Currency,
			"created_at":   notification.CreatedAt.Format(time.RFC3339Nano),
			"trigger":      string(notification.Trigger),
		},
	}).Err()
}
