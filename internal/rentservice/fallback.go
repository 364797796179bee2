package rentservice

import (
	"context"
	"log"
)

// Fallback is the degraded rent service client. It satisfies the same
// interface as HTTPClient but reports ErrUnavailable without attempting any
// call. It is selected when the rent service is disabled or known unhealthy.
type Fallback struct{}

// NewFallback creates the degraded rent service client.
func NewFallback() *Fallback {
	return &Fallback{}
}

// CanAcceptPayment always reports the service as unavailable.
func (f *Fallback) CanAcceptPayment(ctx context.Context, rentID int64) (bool, error) {
	log.Printf("[RENT-SERVICE] fallback for CanAcceptPayment, rent id %d", rentID)
	return false, ErrUnavailable
}

// IsActive always reports the service as unavailable.
func (f *Fallback) IsActive(ctx context.Context, rentID int64) (bool, error) {
	log.Printf("[RENT-SERVICE] fallback for IsActive, rent id %d", rentID)
	return false, ErrUnavailable
}

// MarkCompleted always reports the service as unavailable.
func (f *Fallback) MarkCompleted(ctx context.Context, rentID int64) error {
	log.Printf("[RENT-SERVICE] fallback for MarkCompleted, rent id %d", rentID)
	return ErrUnavailable
}

var _ Client = (*Fallback)(nil)
