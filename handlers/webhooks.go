package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"snowclear-api/config"
	"snowclear-api/payments"
)

type WebhookEvent struct {
	Type          string `json:"type" binding:"required"`
	ReservationID uint   `json:"reservation_id" binding:"required"`
}

// PaymentWebhook receives asynchronous confirmations from the card
// processor. charge.* events drive the payment axis, transfer.* events
// drive the payout axis. Neither ever touches the reservation lifecycle.
func PaymentWebhook(c *gin.Context) {
	var event WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch {
	case strings.HasPrefix(event.Type, "charge."):
		res, err := payments.ApplyPaymentEvent(config.DB, event.ReservationID, event.Type)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":        "Payment event applied",
			"payment_status": res.PaymentStatus,
		})
	case event.Type == "transfer.paid" || event.Type == "transfer.failed":
		if err := payments.ApplyTransferEvent(config.DB, event.ReservationID, event.Type == "transfer.paid"); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Transfer event applied"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown event type: " + event.Type})
	}
}
