package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/davidzorentals/booking-backend/internal/config"
	"github.com/davidzorentals/booking-backend/internal/database"
	"github.com/davidzorentals/booking-backend/internal/models"
	"github.com/davidzorentals/booking-backend/pkg/stripe"
)

// ReconcilerService applies payment provider events to the booking
// ledger. Every handler tolerates duplicate delivery: the provider
// retries until it sees a 2xx, so the same event can arrive many times.
type ReconcilerService struct {
	bookings         *BookingService
	paymentRepo      *database.PaymentRepository
	userRepo         *database.UserRepository
	notificationRepo *database.NotificationRepository
	messenger        Messenger
	cfg              *config.Config
	logger           *logrus.Logger
}

// NewReconcilerService creates a new reconciler service
func NewReconcilerService(
	bookings *BookingService,
	paymentRepo *database.PaymentRepository,
	userRepo *database.UserRepository,
	notificationRepo *database.NotificationRepository,
	messenger Messenger,
	cfg *config.Config,
	logger *logrus.Logger,
) *ReconcilerService {
	return &ReconcilerService{
		bookings:         bookings,
		paymentRepo:      paymentRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		messenger:        messenger,
		cfg:              cfg,
		logger:           logger,
	}
}

// HandleCheckoutCompleted reconciles a completed checkout session:
// confirm the booking, record the payment, fan out notifications.
// Events pointing at unknown bookings are dropped without error so the
// provider stops retrying them.
func (s *ReconcilerService) HandleCheckoutCompleted(session *stripe.CheckoutSession) error {
	bookingIDStr, ok := session.Metadata["booking_id"]
	if !ok || bookingIDStr == "" {
		s.logger.WithField("session_id", session.ID).Warn("Checkout event without booking_id metadata, ignoring")
		return nil
	}

	bookingID, err := uuid.Parse(bookingIDStr)
	if err != nil {
		s.logger.WithField("session_id", session.ID).Warn("Checkout event with malformed booking_id, ignoring")
		return nil
	}

	booking, err := s.bookings.Finalize(bookingID)
	if err != nil {
		if models.IsNotFound(err) {
			s.logger.WithField("booking_id", bookingID).Warn("Checkout event for unknown booking, ignoring")
			return nil
		}
		if models.IsConflict(err) {
			return s.handleDoubleBooking(session, bookingID)
		}
		return err
	}

	if _, err := s.recordPayment(session, booking.UserID, bookingID); err != nil {
		return err
	}

	s.notifyStaff(
		"Booking confirmed",
		fmt.Sprintf("%s paid %.2f %s for booking %s.",
			booking.GuestName, float64(session.AmountTotal)/100, session.Currency, bookingID),
		models.NotificationTypeBookingConfirmed,
		bookingID,
	)

	if booking.GuestPhone.Valid {
		msg := fmt.Sprintf("Hi %s, your payment was received and your booking is confirmed! View it at %s/dashboard.",
			booking.GuestName, s.cfg.App.BaseURL)
		if err := s.messenger.Send(booking.GuestPhone.String, msg); err != nil {
			s.logger.WithError(err).WithField("booking_id", bookingID).Warn("Failed to send confirmation message")
		}
	}

	return nil
}

// handleDoubleBooking deals with the losing side of a race: the guest
// paid but an overlapping booking got confirmed first. The money is
// recorded, the booking is cancelled, and staff are told to refund.
func (s *ReconcilerService) handleDoubleBooking(session *stripe.CheckoutSession, bookingID uuid.UUID) error {
	s.logger.WithField("booking_id", bookingID).Error("Paid booking lost its dates, refund required")

	userID := uuid.Nil
	if raw, ok := session.Metadata["user_id"]; ok {
		if parsed, err := uuid.Parse(raw); err == nil {
			userID = parsed
		}
	}

	if _, err := s.recordPayment(session, userID, bookingID); err != nil {
		return err
	}

	if err := s.bookings.Cancel(bookingID); err != nil {
		return err
	}

	s.notifyStaff(
		"Refund required",
		fmt.Sprintf("Booking %s was paid but its dates were taken by another confirmed booking. Refund payment %s.",
			bookingID, session.PaymentIntent),
		models.NotificationTypeRefundRequired,
		bookingID,
	)

	return nil
}

// HandlePaymentFailed marks the payment failed and releases the
// pending booking so its dates open up again
func (s *ReconcilerService) HandlePaymentFailed(intent *stripe.PaymentIntent) error {
	if err := s.paymentRepo.MarkFailedByIntent(intent.ID); err != nil {
		return err
	}

	bookingIDStr, ok := intent.Metadata["booking_id"]
	if !ok || bookingIDStr == "" {
		s.logger.WithField("payment_intent", intent.ID).Info("Payment failed event without booking metadata")
		return nil
	}

	bookingID, err := uuid.Parse(bookingIDStr)
	if err != nil {
		s.logger.WithField("payment_intent", intent.ID).Warn("Payment failed event with malformed booking_id, ignoring")
		return nil
	}

	if err := s.bookings.CancelForFailedPayment(bookingID); err != nil {
		return err
	}

	s.notifyStaff(
		"Payment failed",
		fmt.Sprintf("Payment for booking %s failed and the booking was released.", bookingID),
		models.NotificationTypePaymentFailed,
		bookingID,
	)

	return nil
}

// recordPayment inserts the payment row for a completed session. The
// payment intent ID dedupes replays; a second delivery inserts nothing.
func (s *ReconcilerService) recordPayment(session *stripe.CheckoutSession, userID, bookingID uuid.UUID) (bool, error) {
	if session.PaymentIntent == "" {
		s.logger.WithField("session_id", session.ID).Warn("Checkout session has no payment intent, skipping payment record")
		return false, nil
	}

	payment := database.NewPayment(
		bookingID,
		userID,
		float64(session.AmountTotal)/100,
		session.Currency,
		session.PaymentIntent,
	)

	inserted, err := s.paymentRepo.CreateIfAbsent(payment)
	if err != nil {
		return false, err
	}

	if !inserted {
		s.logger.WithFields(logrus.Fields{
			"booking_id":     bookingID,
			"payment_intent": session.PaymentIntent,
		}).Info("Payment already recorded, duplicate event")
	}

	return inserted, nil
}

// notifyStaff fans a dashboard notification out to every manager and
// admin. Notification failures never fail the reconciliation.
func (s *ReconcilerService) notifyStaff(title, message, notificationType string, relatedID uuid.UUID) {
	staff, err := s.userRepo.ListStaff()
	if err != nil {
		s.logger.WithError(err).Warn("Failed to list staff for notification")
		return
	}

	for _, user := range staff {
		n := database.NewNotification(user.ID, title, message, notificationType, &relatedID)
		if err := s.notificationRepo.Create(n); err != nil {
			s.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to create notification")
		}
	}
}
