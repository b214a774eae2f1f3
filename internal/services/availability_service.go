package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/davidzorentals/booking-backend/internal/database"
	"github.com/davidzorentals/booking-backend/internal/models"
)

// AvailabilityService answers whether a date range is free on an asset
type AvailabilityService struct {
	bookingRepo *database.BookingRepository
	logger      *logrus.Logger
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(bookingRepo *database.BookingRepository, logger *logrus.Logger) *AvailabilityService {
	return &AvailabilityService{
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// IsAvailable reports whether [start, end) is free of confirmed
// bookings on the asset. Only confirmed bookings block a range;
// pending and cancelled ones do not. A booking ending on start or
// starting on end does not conflict.
func (s *AvailabilityService) IsAvailable(bookingType models.BookingType, assetID uuid.UUID, start, end time.Time) (bool, error) {
	if !end.After(start) {
		return false, models.NewValidationError("end_date", "must be after start_date")
	}

	overlap, err := s.bookingRepo.HasConfirmedOverlap(bookingType, assetID, start, end)
	if err != nil {
		return false, fmt.Errorf("failed to check availability: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_type": bookingType,
		"asset_id":     assetID,
		"start_date":   start.Format("2006-01-02"),
		"end_date":     end.Format("2006-01-02"),
		"available":    !overlap,
	}).Debug("Availability checked")

	return !overlap, nil
}
