package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gbp-agency-api/config"
	"gbp-agency-api/models"
)

const maxBillingPayloadBytes = 256 * 1024

// verifyBillingSignature checks the provider's HMAC-SHA256 signature over
// the raw request body. The comparison is constant time.
func verifyBillingSignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

type billingEventPayload struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	AgencyID *uint  `json:"agency_id"`
}

// ReceiveBillingWebhook stores one signed event from the payment provider.
// Subscription state is managed upstream; this endpoint only records events
// once each, keyed by the provider's event id, so replays and provider
// retries are harmless.
func ReceiveBillingWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBillingPayloadBytes+1))
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Request body is required", "code": "INVALID_INPUT"})
		return
	}
	if len(body) > maxBillingPayloadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Payload too large", "code": "INVALID_INPUT"})
		return
	}

	if !verifyBillingSignature(os.Getenv("BILLING_WEBHOOK_SECRET"), body, c.GetHeader("X-Billing-Signature")) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid signature", "code": "UNAUTHORIZED"})
		return
	}

	var payload billingEventPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.ID == "" || payload.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Event id and type are required", "code": "INVALID_INPUT"})
		return
	}

	// The provider retries until it sees 2xx, so a replayed event must
	// answer 200 without writing a second row.
	var existing models.BillingEvent
	err = config.DB.Where("event_id = ?", payload.ID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "duplicate": true})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		config.Logger.Error("billing event lookup failed", zap.String("event_id", payload.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error", "code": "INTERNAL"})
		return
	}

	event := models.BillingEvent{
		AgencyID:  payload.AgencyID,
		EventID:   payload.ID,
		EventType: payload.Type,
		Payload:   string(body),
	}
	if err := config.DB.Create(&event).Error; err != nil {
		config.Logger.Error("billing event store failed", zap.String("event_id", payload.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error", "code": "INTERNAL"})
		return
	}

	config.Logger.Info("billing event recorded",
		zap.String("event_id", payload.ID),
		zap.String("event_type", payload.Type))
	c.JSON(http.StatusOK, gin.H{"success": true, "duplicate": false})
}
