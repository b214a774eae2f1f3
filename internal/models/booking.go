package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingType identifies which catalog a booking draws from
type BookingType string

const (
	BookingTypeProperty BookingType = "property"
	BookingTypeVehicle  BookingType = "vehicle"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// Booking represents one reservation of a property or vehicle. Dates
// are half-open: the end date is the checkout day and is free to be
// the start of another booking.
type Booking struct {
	ID                      uuid.UUID     `json:"id" db:"id"`
	UserID                  uuid.UUID     `json:"user_id" db:"user_id"`
	BookingType             BookingType   `json:"booking_type" db:"booking_type"`
	PropertyID              *uuid.UUID    `json:"property_id,omitempty" db:"property_id"`
	VehicleID               *uuid.UUID    `json:"vehicle_id,omitempty" db:"vehicle_id"`
	StartDate               time.Time     `json:"start_date" db:"start_date"`
	EndDate                 time.Time     `json:"end_date" db:"end_date"`
	TotalAmount             float64       `json:"total_amount" db:"total_amount"`
	Status                  BookingStatus `json:"status" db:"status"`
	GuestName               string        `json:"guest_name" db:"guest_name"`
	GuestEmail              NullString    `json:"guest_email,omitempty" db:"guest_email"`
	GuestPhone              NullString    `json:"guest_phone,omitempty" db:"guest_phone"`
	SpecialRequests         NullString    `json:"special_requests,omitempty" db:"special_requests"`
	StripeCheckoutSessionID NullString    `json:"-" db:"stripe_checkout_session_id"`
	CreatedAt               time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time     `json:"updated_at" db:"updated_at"`
}

// AssetID returns the booked asset's ID regardless of type
func (b *Booking) AssetID() uuid.UUID {
	if b.BookingType == BookingTypeVehicle && b.VehicleID != nil {
		return *b.VehicleID
	}
	if b.PropertyID != nil {
		return *b.PropertyID
	}
	return uuid.Nil
}

// Units returns the number of billable units (nights or days)
func (b *Booking) Units() int {
	return int(b.EndDate.Sub(b.StartDate).Hours() / 24)
}

// CreateBookingRequest represents a booking submission from the portal
type CreateBookingRequest struct {
	AssetType       string  `json:"asset_type" binding:"required"`
	AssetID         string  `json:"asset_id" binding:"required"`
	StartDate       string  `json:"start_date" binding:"required"`
	EndDate         string  `json:"end_date" binding:"required"`
	TotalAmount     float64 `json:"total_amount"`
	GuestName       string  `json:"guest_name" binding:"required"`
	GuestEmail      string  `json:"guest_email"`
	GuestPhone      string  `json:"guest_phone"`
	SpecialRequests string  `json:"special_requests"`

	parsedStart time.Time
	parsedEnd   time.Time
}

const dateLayout = "2006-01-02"

// Validate checks the request and parses its dates
func (r *CreateBookingRequest) Validate() error {
	if r.AssetType != string(BookingTypeProperty) && r.AssetType != string(BookingTypeVehicle) {
		return NewValidationError("asset_type", "must be property or vehicle")
	}
	if _, err := uuid.Parse(r.AssetID); err != nil {
		return NewValidationError("asset_id", "must be a valid UUID")
	}
	if r.GuestName == "" {
		return NewValidationError("guest_name", "guest name is required")
	}
	if r.GuestEmail == "" && r.GuestPhone == "" {
		return NewValidationError("guest_email", "a phone number or email address is required")
	}
	if r.TotalAmount < 0 {
		return NewValidationError("total_amount", "must not be negative")
	}
	start, err := time.Parse(dateLayout, r.StartDate)
	if err != nil {
		return NewValidationError("start_date", "must be formatted YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, r.EndDate)
	if err != nil {
		return NewValidationError("end_date", "must be formatted YYYY-MM-DD")
	}
	if !end.After(start) {
		return NewValidationError("end_date", "must be after start_date")
	}
	r.parsedStart = start
	r.parsedEnd = end
	return nil
}

// ParsedStartDate returns the start date parsed by Validate
func (r *CreateBookingRequest) ParsedStartDate() time.Time { return r.parsedStart }

// ParsedEndDate returns the end date parsed by Validate
func (r *CreateBookingRequest) ParsedEndDate() time.Time { return r.parsedEnd }

// AmountsEqual compares two money amounts with sub-cent tolerance
func AmountsEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 0.005
}

// CheckoutResponse is returned after a checkout session is created
type CheckoutResponse struct {
	CheckoutURL string    `json:"checkout_url"`
	BookingID   uuid.UUID `json:"booking_id"`
}
