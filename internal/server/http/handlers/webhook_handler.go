package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/yemma/internal/server/http/dto"
)

const (
	// StripeSignatureHeader carries the webhook signature.
	StripeSignatureHeader = "Stripe-Signature"
	maxWebhookBodyBytes   = 1 << 20
)

// WebhookHandler receives payment provider webhooks.
type WebhookHandler struct {
	facade WebhookFacade
}

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler(facade WebhookFacade) *WebhookHandler {
	return &WebhookHandler{facade: facade}
}

// Stripe handles POST /api/webhooks/stripe. The raw body is required for signature checks.
func (h *WebhookHandler) Stripe(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.WebhookError{Error: "unreadable body"})
		return
	}

	if err := h.facade.HandleStripeWebhook(c.Request.Context(), payload, c.GetHeader(StripeSignatureHeader)); err != nil {
		c.JSON(http.StatusBadRequest, dto.WebhookError{Error: "invalid signature"})
		return
	}

	c.JSON(http.StatusOK, dto.WebhookAck{Received: true})
}
