package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	orderapp "github.com/zambezimeats/backend/internal/application/order"
	"github.com/zambezimeats/backend/internal/interfaces/http/dto"
)

// StripeSignatureHeader carries the webhook signature.
const StripeSignatureHeader = "Stripe-Signature"

// WebhookHandler receives payment provider callbacks. It is mounted
// without authentication; the signature is the credential.
type WebhookHandler struct {
	BaseHandler
	webhookService *orderapp.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhookService *orderapp.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// WebhookAck acknowledges a delivered callback.
type WebhookAck struct {
	Received bool `json:"received"`
}

// Stripe handles POST /webhooks/stripe. The raw body is needed for
// signature verification, so it is read before any decoding. Errors other
// than a bad signature answer 5xx so the provider retries.
func (h *WebhookHandler) Stripe(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, dto.ErrCodeBodyTooBig, "Payload too large")
			return
		}
		h.Error(c, dto.ErrCodeBadRequest, "Failed to read request body")
		return
	}

	signature := c.GetHeader(StripeSignatureHeader)
	if signature == "" {
		h.Error(c, dto.ErrCodeInvalidSignature, "Missing "+StripeSignatureHeader+" header")
		return
	}

	if err := h.webhookService.Handle(c.Request.Context(), payload, signature); err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, WebhookAck{Received: true})
}
