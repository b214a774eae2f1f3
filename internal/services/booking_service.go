package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/davidzorentals/booking-backend/internal/database"
	"github.com/davidzorentals/booking-backend/internal/models"
)

// BookingService owns the booking ledger state machine
type BookingService struct {
	bookingRepo  *database.BookingRepository
	availability *AvailabilityService
	logger       *logrus.Logger
}

// NewBookingService creates a new booking service
func NewBookingService(bookingRepo *database.BookingRepository, availability *AvailabilityService, logger *logrus.Logger) *BookingService {
	return &BookingService{
		bookingRepo:  bookingRepo,
		availability: availability,
		logger:       logger,
	}
}

// Create validates a booking request against an asset's pricing and
// availability and inserts a pending booking. The server recomputes
// the expected total from the asset's rates; a client-sent total that
// does not match is rejected.
func (s *BookingService) Create(req *models.CreateBookingRequest, userID uuid.UUID, asset models.BookableAsset) (*models.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	assetID := uuid.MustParse(req.AssetID)
	bookingType := models.BookingType(req.AssetType)

	now := time.Now()
	booking := &models.Booking{
		ID:              uuid.New(),
		UserID:          userID,
		BookingType:     bookingType,
		StartDate:       req.ParsedStartDate(),
		EndDate:         req.ParsedEndDate(),
		Status:          models.BookingStatusPending,
		GuestName:       req.GuestName,
		GuestEmail:      models.NewNullString(req.GuestEmail),
		GuestPhone:      models.NewNullString(req.GuestPhone),
		SpecialRequests: models.NewNullString(req.SpecialRequests),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if bookingType == models.BookingTypeProperty {
		booking.PropertyID = &assetID
	} else {
		booking.VehicleID = &assetID
	}

	units := booking.Units()
	expected := float64(units)*asset.RatePerUnit() + asset.FlatFee()
	if !models.AmountsEqual(req.TotalAmount, expected) {
		return nil, models.NewValidationError("total_amount",
			fmt.Sprintf("expected %.2f for %d units", expected, units))
	}
	booking.TotalAmount = expected

	available, err := s.availability.IsAvailable(bookingType, assetID, booking.StartDate, booking.EndDate)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, models.NewConflictError("the selected dates are no longer available")
	}

	if err := s.bookingRepo.Create(booking); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"booking_type": bookingType,
		"asset_id":     assetID,
		"total_amount": expected,
	}).Info("Booking created")

	return booking, nil
}

// StampCheckoutSession records the checkout session token on a booking
func (s *BookingService) StampCheckoutSession(bookingID uuid.UUID, sessionID string) error {
	return s.bookingRepo.SetCheckoutSession(bookingID, sessionID)
}

// Finalize confirms a booking after its payment succeeded. The call is
// idempotent: finalizing an already confirmed booking is a no-op
// success, so replayed payment events cannot corrupt the ledger.
// Returns ConflictError when an overlapping booking got confirmed
// first and this one cannot be.
func (s *BookingService) Finalize(bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, models.NewNotFoundError("booking", bookingID.String())
	}

	if booking.Status == models.BookingStatusConfirmed {
		s.logger.WithField("booking_id", bookingID).Info("Booking already confirmed, skipping")
		return booking, nil
	}

	if booking.Status != models.BookingStatusPending {
		return nil, models.NewConflictError(
			fmt.Sprintf("booking is %s and cannot be confirmed", booking.Status))
	}

	confirmed, err := s.bookingRepo.ConfirmIfAvailable(bookingID)
	if err != nil {
		return nil, err
	}
	if !confirmed {
		s.logger.WithField("booking_id", bookingID).Warn("Booking lost its dates before confirmation")
		return nil, models.NewConflictError("an overlapping booking was confirmed first")
	}

	booking.Status = models.BookingStatusConfirmed

	s.logger.WithField("booking_id", bookingID).Info("Booking confirmed")

	return booking, nil
}

// CancelForFailedPayment releases a pending booking's date range after
// its payment failed. Confirmed bookings are left alone.
func (s *BookingService) CancelForFailedPayment(bookingID uuid.UUID) error {
	cancelled, err := s.bookingRepo.CancelPending(bookingID)
	if err != nil {
		return err
	}

	if cancelled {
		s.logger.WithField("booking_id", bookingID).Info("Pending booking cancelled after failed payment")
	}

	return nil
}

// Cancel marks a booking cancelled regardless of state. Used when a
// confirmed booking turns out to be double booked and needs a refund.
func (s *BookingService) Cancel(bookingID uuid.UUID) error {
	return s.bookingRepo.UpdateStatus(bookingID, models.BookingStatusCancelled)
}

// GetByID retrieves a booking
func (s *BookingService) GetByID(bookingID uuid.UUID) (*models.Booking, error) {
	return s.bookingRepo.GetByID(bookingID)
}

// ListByUser retrieves a user's bookings
func (s *BookingService) ListByUser(userID uuid.UUID) ([]*models.Booking, error) {
	return s.bookingRepo.ListByUser(userID)
}
