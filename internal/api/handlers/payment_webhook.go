package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/freshfold/laundryapi/internal/config"
	"github.com/freshfold/laundryapi/internal/domain"
	"github.com/freshfold/laundryapi/internal/repository"
	"github.com/freshfold/laundryapi/internal/service"
	"github.com/freshfold/laundryapi/pkg/errors"
)

// HandlePaymentWebhook handles POST /webhooks/payment
// The payment provider's payloads are loosely typed (amounts arrive as
// strings or numbers depending on the event), so fields are coerced with
// cast instead of bound to a struct.
func HandlePaymentWebhook(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.PaymentWebhookSecret == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}

		authHeader := c.GetHeader("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(cfg.PaymentWebhookSecret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var payload map[string]interface{}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		referenceID := cast.ToString(payload["reference_id"])
		if referenceID == "" {
			referenceID = cast.ToString(payload["booking_id"])
		}
		eventStatus := strings.ToLower(cast.ToString(payload["status"]))
		amount := cast.ToFloat64(payload["amount"])
		method := cast.ToString(payload["method"])

		bookingID, err := uuid.Parse(referenceID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reference_id"})
			return
		}

		booking, err := repos.Booking.GetByID(c.Request.Context(), bookingID)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				// Acknowledge unknown references so the provider stops retrying
				logger.Warn("Payment webhook for unknown booking", zap.String("reference_id", referenceID))
				c.JSON(http.StatusOK, gin.H{"ok": true})
				return
			}
			logger.Error("Payment webhook: booking lookup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		var paymentStatus string
		switch eventStatus {
		case "paid", "success", "succeeded":
			paymentStatus = "Paid"
		case "failed", "expired":
			paymentStatus = "Payment failed"
		case "pending":
			paymentStatus = "Payment pending"
		default:
			logger.Warn("Payment webhook: unrecognized status", zap.String("status", eventStatus))
			c.JSON(http.StatusOK, gin.H{"ok": true})
			return
		}

		var methodPtr *string
		if method != "" {
			methodPtr = &method
		}
		if err := repos.Booking.UpdatePayment(c.Request.Context(), booking.ID, paymentStatus, methodPtr, nil); err != nil {
			logger.Error("Payment webhook: failed to update payment", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		event := &domain.BookingEvent{
			BookingID: booking.ID,
			EventType: "payment_update",
			EventData: map[string]interface{}{
				"status": paymentStatus,
				"amount": amount,
				"method": method,
			},
		}
		repos.BookingEvent.Create(c.Request.Context(), event)

		logger.Info("Payment webhook processed",
			zap.String("booking_id", booking.ID.String()),
			zap.String("payment_status", paymentStatus))

		// Let the customer know the payment settled (fire-and-forget)
		if paymentStatus == "Paid" {
			customer, err := repos.Account.GetByID(c.Request.Context(), booking.CustomerID)
			if err == nil && customer.NotifyURL != nil && *customer.NotifyURL != "" {
				notifyPayload := map[string]interface{}{
					"event":          "payment_update",
					"booking_id":     booking.ID.String(),
					"payment_status": paymentStatus,
				}
				go service.NotifyStatusUpdate(*customer.NotifyURL, notifyPayload, logger)
			}
		}

		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
