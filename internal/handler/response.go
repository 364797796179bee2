package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"rentpay/internal/domain"
	"rentpay/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the status code from the
// service error taxonomy.
func respondError(c *gin.Context, err error) {
	c.JSON(service.StatusCodeFor(err), ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// PaymentResponse is the HTTP representation of a payment.
type PaymentResponse struct {
	ID                string `json:"id"`
	ProviderPaymentID string `json:"provider_payment_id"`
	Amount            int64  `json:"amount"`
	Currency          string `json:"currency"`
	PaymentMethodID   string `json:"payment_method_id"`
	Status            string `json:"status"`
	CarID             int64  `json:"car_id"`
	RentID            int64  `json:"rent_id"`
	ClientID          int64  `json:"client_id"`
	CreatedAt         string `json:"created_at"`
}

func toPaymentResponse(payment *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                payment.ID,
		ProviderPaymentID: payment.ProviderPaymentID,
		Amount:            payment.Amount,
		Currency:          payment.Currency,
		PaymentMethodID:   payment.PaymentMethodID,
		Status:            string(payment.Status),
		CarID:             payment.CarID,
		RentID:            payment.RentID,
		ClientID:          payment.ClientID,
		CreatedAt:         payment.CreatedAt.Format(time.RFC3339Nano),
	}
}
