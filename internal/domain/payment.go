package domain

import "time"

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	// PaymentStatusPendingCreate is the initial status before the provider
	// has accepted the payment intent. Payments are never persisted in this
	// status.
	PaymentStatusPendingCreate PaymentStatus = "PENDING_CREATE"

	PaymentStatusRequiresPaymentMethod PaymentStatus = "REQUIRES_PAYMENT_METHOD"
	PaymentStatusRequiresConfirmation  PaymentStatus = "REQUIRES_CONFIRMATION"
	PaymentStatusRequiresAction        PaymentStatus = "REQUIRES_ACTION"
	PaymentStatusRequiresCapture       PaymentStatus = "REQUIRES_CAPTURE"
	PaymentStatusProcessing            PaymentStatus = "PROCESSING"
	PaymentStatusCanceled              PaymentStatus = "CANCELED"
	PaymentStatusSucceeded             PaymentStatus = "SUCCEEDED"
	PaymentStatusFailed                PaymentStatus = "FAILED"

	// PaymentStatusRefunded is reachable only from SUCCEEDED.
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// IsTerminal reports whether no further status change is allowed.
// SUCCEEDED is not terminal: it still permits the refund edge.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusCanceled, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo reports whether the state graph allows moving from s to
// target. Transitions are monotonic: terminal statuses have no outgoing
// edges and SUCCEEDED only permits REFUNDED.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	if s == target {
		return false
	}
	if s.IsTerminal() {
		return false
	}
	if s == PaymentStatusSucceeded {
		return target == PaymentStatusRefunded
	}
	// Non-terminal provider statuses may move to any provider-reported
	// status, but never back to the pre-submission one.
	return target != PaymentStatusPendingCreate
}

// Payment represents a payment backing a car rental.
type Payment struct {
	ID                string
	ProviderPaymentID string
	Amount            int64 // minor currency units
	Currency          string
	PaymentMethodID   string
	Status            PaymentStatus
	CarID             int64
	RentID            int64
	ClientID          int64
	CreatedAt         time.Time
}

// PaymentFilter holds optional criteria for listing payments. CreatedFrom
// and CreatedTo bound the creation time range; all other fields match
// exactly when set.
type PaymentFilter struct {
	Amount          *int64
	Currency        *string
	PaymentMethodID *string
	CarID           *int64
	RentID          *int64
	ClientID        *int64
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
	Status          *PaymentStatus
}
