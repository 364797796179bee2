package event

import (
	"context"
	"log"
	"sync"
	"time"

	"rentpay/internal/metrics"
)

const publishTimeout = 5 * time.Second

// Emitter publishes audit records and notifications without ever affecting
// the operation that produced them. Publishing happens on detached
// goroutines with their own deadline, so cancellation of the primary request
// does not cancel a pending emission; failures are logged, never returned.
type Emitter struct {
	sink Sink
	wg   sync.WaitGroup
}

// NewEmitter creates an Emitter backed by the given sink.
func NewEmitter(sink Sink) *Emitter {
	return &Emitter{sink: sink}
}

// Audit emits one audit record for a completed lifecycle operation.
func (e *Emitter) Audit(actor, description string, action ActionType, statusCode int) {
	record := AuditRecord{
		Actor:       actor,
		Description: description,
		Action:      action,
		Service:     ServicePayment,
		StatusCode:  statusCode,
		OccurredAt:  time.Now().UTC(),
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := e.sink.PublishAudit(ctx, record); err != nil {
			metrics.EventsEmitted.WithLabelValues("audit", "error").Inc()
			log.Printf("[AUDIT] publish failed, action=%s status=%d: %v", record.Action, record.StatusCode, err)
			return
		}
		metrics.EventsEmitted.WithLabelValues("audit", "ok").Inc()
	}()
}

// Notify emits one user-facing notification.
func (e *Emitter) Notify(notification Notification) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := e.sink.PublishNotification(ctx, notification); err != nil {
			metrics.EventsEmitted.WithLabelValues("notification", "error").Inc()
			log.Printf("[NOTIFICATION] publish failed, trigger=%s recipient=%d: %v", notification.Trigger, notification.RecipientID, err)
			return
		}
		metrics.EventsEmitted.WithLabelValues("notification", "ok").Inc()
	}()
}

// Flush blocks until all pending emissions have completed. Used on shutdown
// and by tests that assert on emitted events.
func (e *Emitter) Flush() {
	e.wg.Wait()
}
