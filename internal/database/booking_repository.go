package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/davidzorentals/booking-backend/internal/models"
)

// BookingRepository handles booking ledger database operations
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{
		db: db,
	}
}

const bookingColumns = `id, user_id, booking_type, property_id, vehicle_id,
	       start_date, end_date, total_amount, status,
	       guest_name, guest_email, guest_phone, special_requests,
	       stripe_checkout_session_id, created_at, updated_at`

// Create inserts a new booking row
func (r *BookingRepository) Create(booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, user_id, booking_type, property_id, vehicle_id,
			start_date, end_date, total_amount, status,
			guest_name, guest_email, guest_phone, special_requests,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.Exec(
		query,
		booking.ID,
		booking.UserID,
		booking.BookingType,
		booking.PropertyID,
		booking.VehicleID,
		booking.StartDate,
		booking.EndDate,
		booking.TotalAmount,
		booking.Status,
		booking.GuestName,
		booking.GuestEmail,
		booking.GuestPhone,
		booking.SpecialRequests,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	err := r.db.Get(&booking, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Booking not found, return nil without error
		}
		return nil, fmt.Errorf("failed to get booking by ID: %w", err)
	}

	return &booking, nil
}

// GetByCheckoutSessionID retrieves a booking by its checkout session token
func (r *BookingRepository) GetByCheckoutSessionID(sessionID string) (*models.Booking, error) {
	var booking models.Booking

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE stripe_checkout_session_id = $1`

	err := r.db.Get(&booking, query, sessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get booking by checkout session: %w", err)
	}

	return &booking, nil
}

// HasConfirmedOverlap reports whether a confirmed booking on the asset
// intersects [start, end). Ranges are half-open so a booking ending on
// the requested start date does not count.
func (r *BookingRepository) HasConfirmedOverlap(bookingType models.BookingType, assetID uuid.UUID, start, end time.Time) (bool, error) {
	column, err := assetColumn(bookingType)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1
			FROM bookings
			WHERE %s = $1
			  AND status = 'confirmed'
			  AND start_date < $3
			  AND end_date > $2
		)
	`, column)

	var exists bool
	if err := r.db.QueryRow(query, assetID, start, end).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check booking overlap: %w", err)
	}

	return exists, nil
}

// SetCheckoutSession stamps the checkout session token onto a booking.
// The token is set once; a second stamp returns ErrCheckoutSessionSet.
func (r *BookingRepository) SetCheckoutSession(id uuid.UUID, sessionID string) error {
	query := `
		UPDATE bookings
		SET stripe_checkout_session_id = $1,
		    updated_at = $2
		WHERE id = $3
		  AND stripe_checkout_session_id IS NULL
	`

	result, err := r.db.Exec(query, sessionID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set checkout session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrCheckoutSessionSet
	}

	return nil
}

// ConfirmIfAvailable flips a pending booking to confirmed, but only if
// no other confirmed booking overlaps it on the same asset. The check
// and the update run as one statement so two racing confirmations
// cannot both win. Returns false when the booking was not confirmed.
func (r *BookingRepository) ConfirmIfAvailable(id uuid.UUID) (bool, error) {
	query := `
		UPDATE bookings b
		SET status = 'confirmed',
		    updated_at = $2
		WHERE b.id = $1
		  AND b.status = 'pending'
		  AND NOT EXISTS (
			SELECT 1
			FROM bookings o
			WHERE o.id <> b.id
			  AND o.status = 'confirmed'
			  AND ((b.property_id IS NOT NULL AND o.property_id = b.property_id)
			    OR (b.vehicle_id IS NOT NULL AND o.vehicle_id = b.vehicle_id))
			  AND o.start_date < b.end_date
			  AND o.end_date > b.start_date
		  )
	`

	result, err := r.db.Exec(query, id, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to confirm booking: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// UpdateStatus sets a booking's status
func (r *BookingRepository) UpdateStatus(id uuid.UUID, status models.BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $1,
		    updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.Exec(query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("booking not found")
	}

	return nil
}

// CancelPending flips a pending booking to cancelled so its date range
// frees up. Confirmed bookings are left untouched.
func (r *BookingRepository) CancelPending(id uuid.UUID) (bool, error) {
	query := `
		UPDATE bookings
		SET status = 'cancelled',
		    updated_at = $2
		WHERE id = $1
		  AND status = 'pending'
	`

	result, err := r.db.Exec(query, id, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to cancel booking: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// ListByUser retrieves a user's bookings, newest first
func (r *BookingRepository) ListByUser(userID uuid.UUID) ([]*models.Booking, error) {
	var bookings []*models.Booking

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&bookings, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return bookings, nil
}

// assetColumn maps a booking type to the asset foreign key column
func assetColumn(bookingType models.BookingType) (string, error) {
	switch bookingType {
	case models.BookingTypeProperty:
		return "property_id", nil
	case models.BookingTypeVehicle:
		return "vehicle_id", nil
	default:
		return "", fmt.Errorf("invalid booking type: %s", bookingType)
	}
}
