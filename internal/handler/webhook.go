package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rentpay/internal/service"
)

// signatureHeader carries the provider's payload signature.
const signatureHeader = "Stripe-Signature"

// WebhookHandler handles provider webhook deliveries.
type WebhookHandler struct {
	webhookService *service.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(webhookService *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// HandleStatusEvent handles POST /v1/webhooks/payments. The raw body is
// passed through untouched: the signature must be verified before the
// payload is parsed.
func (h *WebhookHandler) HandleStatusEvent(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cannot read payload"})
		return
	}

	payment, err := h.webhookService.HandleStatusEvent(c.Request.Context(), payload, c.GetHeader(signatureHeader))
	if err != nil {
		respondError(c, err)
		return
	}

	if payment == nil {
		// Unrecognized or concurrently handled event; acknowledged so the
		// provider stops retrying.
		c.Status(http.StatusOK)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}
