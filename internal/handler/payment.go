package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"rentpay/internal/domain"
	"rentpay/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// PaymentPageResponse is the HTTP response for the payment listing.
type PaymentPageResponse struct {
	Payments []PaymentResponse `json:"payments"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Size     int               `json:"size"`
}

// GetPayments handles GET /v1/payments
func (h *PaymentHandler) GetPayments(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	page := intQuery(c, "page", 0)
	size := intQuery(c, "size", 10)

	payments, total, err := h.paymentService.GetPayments(c.Request.Context(), filter, page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := PaymentPageResponse{
		Payments: make([]PaymentResponse, 0, len(payments)),
		Total:    total,
		Page:     page,
		Size:     size,
	}
	for _, payment := range payments {
		resp.Payments = append(resp.Payments, toPaymentResponse(payment))
	}

	respondJSON(c, http.StatusOK, resp)
}

// GetPayment handles GET /v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.paymentService.GetPaymentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// GetPaymentByProviderID handles GET /v1/payments/provider/:providerId
func (h *PaymentHandler) GetPaymentByProviderID(c *gin.Context) {
	payment, err := h.paymentService.GetPaymentByProviderID(c.Request.Context(), c.Param("providerId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// CreatePaymentRequest is the HTTP request body for creating a payment.
type CreatePaymentRequest struct {
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	PaymentMethodID string `json:"payment_method_id"`
	CarID           int64  `json:"car_id"`
	RentID          int64  `json:"rent_id"`
	ClientID        int64  `json:"client_id"`
}

// CreatePayment handles POST /v1/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), service.CreatePaymentRequest{
		Amount:          req.Amount,
		Currency:        req.Currency,
		PaymentMethodID: req.PaymentMethodID,
		CarID:           req.CarID,
		RentID:          req.RentID,
		ClientID:        req.ClientID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toPaymentResponse(payment))
}

// RefundPayment handles POST /v1/payments/provider/:providerId/refund
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	payment, err := h.paymentService.RefundPayment(c.Request.Context(), c.Param("providerId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// DeletePayment handles DELETE /v1/payments/:id
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	payment, err := h.paymentService.DeletePayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// parseFilter builds a PaymentFilter from optional query parameters.
func parseFilter(c *gin.Context) (domain.PaymentFilter, error) {
	var filter domain.PaymentFilter

	if v, ok, err := int64Query(c, "amount"); err != nil {
		return filter, err
	} else if ok {
		filter.Amount = &v
	}
	if v := c.Query("currency"); v != "" {
		filter.Currency = &v
	}
	if v := c.Query("paymentMethodId"); v != "" {
		filter.PaymentMethodID = &v
	}
	if v, ok, err := int64Query(c, "carId"); err != nil {
		return filter, err
	} else if ok {
		filter.CarID = &v
	}
	if v, ok, err := int64Query(c, "rentId"); err != nil {
		return filter, err
	} else if ok {
		filter.RentID = &v
	}
	if v, ok, err := int64Query(c, "clientId"); err != nil {
		return filter, err
	} else if ok {
		filter.ClientID = &v
	}
	if v, ok, err := timeQuery(c, "createdFrom"); err != nil {
		return filter, err
	} else if ok {
		filter.CreatedFrom = &v
	}
	if v, ok, err := timeQuery(c, "createdTo"); err != nil {
		return filter, err
	} else if ok {
		filter.CreatedTo = &v
	}
	if v := c.Query("status"); v != "" {
		status := domain.PaymentStatus(v)
		filter.Status = &status
	}

	return filter, nil
}

func int64Query(c *gin.Context, name string) (int64, bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func timeQuery(c *gin.Context, name string) (time.Time, bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, false, nil
	}
	v, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return v, true, nil
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
