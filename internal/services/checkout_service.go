package services

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/davidzorentals/booking-backend/internal/config"
	"github.com/davidzorentals/booking-backend/internal/database"
	"github.com/davidzorentals/booking-backend/internal/models"
	"github.com/davidzorentals/booking-backend/pkg/stripe"
	"github.com/davidzorentals/booking-backend/pkg/validator"
)

// CheckoutCreator opens hosted payment sessions
type CheckoutCreator interface {
	CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// CheckoutService drives the portal checkout flow: resolve the guest,
// create a pending booking, open a Stripe session and hand the
// redirect URL back to the portal.
type CheckoutService struct {
	propertyRepo *database.PropertyRepository
	vehicleRepo  *database.VehicleRepository
	identity     *IdentityService
	phones       *validator.PhoneValidator
	bookings     *BookingService
	stripeClient CheckoutCreator
	messenger    Messenger
	cfg          *config.Config
	logger       *logrus.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	propertyRepo *database.PropertyRepository,
	vehicleRepo *database.VehicleRepository,
	identity *IdentityService,
	phones *validator.PhoneValidator,
	bookings *BookingService,
	stripeClient CheckoutCreator,
	messenger Messenger,
	cfg *config.Config,
	logger *logrus.Logger,
) *CheckoutService {
	return &CheckoutService{
		propertyRepo: propertyRepo,
		vehicleRepo:  vehicleRepo,
		identity:     identity,
		phones:       phones,
		bookings:     bookings,
		stripeClient: stripeClient,
		messenger:    messenger,
		cfg:          cfg,
		logger:       logger,
	}
}

// InitiateCheckout runs the full checkout flow for a booking request.
// A Stripe failure leaves the pending booking behind without a session
// token; the guest resubmits and gets a fresh booking.
func (s *CheckoutService) InitiateCheckout(req *models.CreateBookingRequest) (*models.CheckoutResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Normalize to E.164 before anything reads the number: identity
	// lookup, the stored booking snapshot and the messaging channel all
	// see the same canonical form
	if req.GuestPhone != "" {
		phone, err := s.phones.Validate(req.GuestPhone)
		if err != nil {
			return nil, models.NewValidationError("guest_phone", "must be a valid phone number")
		}
		req.GuestPhone = phone
	}

	asset, err := s.lookupAsset(models.BookingType(req.AssetType), uuid.MustParse(req.AssetID))
	if err != nil {
		return nil, err
	}

	user, err := s.identity.Resolve(req.GuestName, req.GuestPhone, req.GuestEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve guest: %w", err)
	}

	booking, err := s.bookings.Create(req, user.ID, asset)
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL:    fmt.Sprintf("%s/booking-success?session_id={CHECKOUT_SESSION_ID}", s.cfg.App.BaseURL),
		CancelURL:     fmt.Sprintf("%s/%s/%s", s.cfg.App.BaseURL, req.AssetType, req.AssetID),
		Currency:      s.cfg.Stripe.Currency,
		UnitAmount:    int64(math.Round(booking.TotalAmount * 100)),
		Quantity:      1,
		ProductName:   asset.DisplayName(),
		CustomerEmail: req.GuestEmail,
		Metadata: map[string]string{
			"booking_id":   booking.ID.String(),
			"asset_type":   req.AssetType,
			"asset_id":     req.AssetID,
			"user_id":      user.ID.String(),
			"phone_number": req.GuestPhone,
			"email":        req.GuestEmail,
			"guest_name":   req.GuestName,
		},
	}

	session, err := s.stripeClient.CreateCheckoutSession(params)
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).Error("Checkout session creation failed")
		return nil, models.NewExternalServiceError("stripe", err)
	}

	if err := s.bookings.StampCheckoutSession(booking.ID, session.ID); err != nil {
		return nil, err
	}

	// Courtesy message; checkout succeeds even when it cannot be sent
	if req.GuestPhone != "" {
		msg := fmt.Sprintf("Hi %s, your booking for %s (%s to %s) has been created and is awaiting payment.",
			req.GuestName, asset.DisplayName(), req.StartDate, req.EndDate)
		if err := s.messenger.Send(req.GuestPhone, msg); err != nil {
			s.logger.WithError(err).WithField("booking_id", booking.ID).Warn("Failed to send booking created message")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"session_id": session.ID,
	}).Info("Checkout initiated")

	return &models.CheckoutResponse{
		CheckoutURL: session.URL,
		BookingID:   booking.ID,
	}, nil
}

// lookupAsset fetches the active listing the request points at
func (s *CheckoutService) lookupAsset(bookingType models.BookingType, assetID uuid.UUID) (models.BookableAsset, error) {
	switch bookingType {
	case models.BookingTypeProperty:
		property, err := s.propertyRepo.GetActive(assetID)
		if err != nil {
			return nil, err
		}
		if property == nil {
			return nil, models.NewNotFoundError("property", assetID.String())
		}
		return property, nil
	case models.BookingTypeVehicle:
		vehicle, err := s.vehicleRepo.GetActive(assetID)
		if err != nil {
			return nil, err
		}
		if vehicle == nil {
			return nil, models.NewNotFoundError("vehicle", assetID.String())
		}
		return vehicle, nil
	default:
		return nil, models.NewValidationError("asset_type", "must be property or vehicle")
	}
}
