package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/davidzorentals/booking-backend/internal/config"
	"github.com/davidzorentals/booking-backend/internal/models"
	"github.com/davidzorentals/booking-backend/internal/services"
	"github.com/davidzorentals/booking-backend/pkg/stripe"
)

// WebhookHandler receives payment provider callbacks
type WebhookHandler struct {
	reconciler *services.ReconcilerService
	cfg        *config.Config
	logger     *logrus.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(reconciler *services.ReconcilerService, cfg *config.Config, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{
		reconciler: reconciler,
		cfg:        cfg,
		logger:     logger,
	}
}

// HandleStripe handles POST /api/v1/webhooks/stripe. The signature is
// verified against the raw body before anything else happens; a bad
// signature changes no state. Processed events always get a 200 so the
// provider stops retrying, including events we choose to ignore.
func (h *WebhookHandler) HandleStripe(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Failed to read request body",
		})
		return
	}

	event, err := stripe.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.cfg.Stripe.WebhookSecret)
	if err != nil {
		h.logger.WithError(err).Warn("Webhook signature verification failed")
		respondError(c, models.NewAuthError("Webhook signature verification failed"))
		return
	}

	h.logger.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
	}).Info("Webhook event received")

	switch event.Type {
	case "checkout.session.completed":
		session, err := stripe.ParseCheckoutSession(event)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_payload",
				Message: "Malformed checkout session object",
			})
			return
		}
		if err := h.reconciler.HandleCheckoutCompleted(session); err != nil {
			h.logger.WithError(err).WithField("event_id", event.ID).Error("Failed to reconcile checkout event")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "reconciliation_failed",
				Message: "Failed to process event",
			})
			return
		}

	case "payment_intent.payment_failed":
		intent, err := stripe.ParsePaymentIntent(event)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_payload",
				Message: "Malformed payment intent object",
			})
			return
		}
		if err := h.reconciler.HandlePaymentFailed(intent); err != nil {
			h.logger.WithError(err).WithField("event_id", event.ID).Error("Failed to reconcile failed payment")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "reconciliation_failed",
				Message: "Failed to process event",
			})
			return
		}

	default:
		h.logger.WithField("event_type", event.Type).Debug("Ignoring unhandled event type")
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
