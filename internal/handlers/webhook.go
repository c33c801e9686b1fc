package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"talaam-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	subscriptionService *services.SubscriptionService
	secret              string
}

func NewWebhookHandler(subscriptionService *services.SubscriptionService, secret string) *WebhookHandler {
	return &WebhookHandler{subscriptionService: subscriptionService, secret: secret}
}

// verifySignature checks the gateway's HMAC-SHA256 hex signature over the
// raw body. Skipped when no secret is configured.
func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if h.secret == "" {
		return true
	}
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// HandlePayment godoc
// @Summary      Payment gateway webhook
// @Description  Idempotent on the gateway event reference; redeliveries are acknowledged without effect.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        X-Webhook-Signature header string false "HMAC-SHA256 hex signature over the raw body"
// @Success      200 {object} MessageResponse
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/webhooks/payment [post]
func (h *WebhookHandler) HandlePayment(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cannot read body"})
		return
	}

	if !h.verifySignature(body, c.GetHeader("X-Webhook-Signature")) {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid signature"})
		return
	}

	var event services.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid payload"})
		return
	}

	if err := h.subscriptionService.ApplyWebhookEvent(event, body); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "event processed"})
}
