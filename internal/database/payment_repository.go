package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/davidzorentals/booking-backend/internal/models"
)

// PaymentRepository handles payment database operations
type PaymentRepository struct {
	db DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{
		db: db,
	}
}

// CreateIfAbsent inserts a payment row keyed by the payment intent ID.
// A replayed provider event hits the unique constraint and inserts
// nothing. Returns whether a row was actually written.
func (r *PaymentRepository) CreateIfAbsent(payment *models.Payment) (bool, error) {
	query := `
		INSERT INTO payments (
			id, booking_id, user_id, amount, currency,
			status, payment_method, stripe_payment_intent_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (stripe_payment_intent_id) DO NOTHING
	`

	result, err := r.db.Exec(
		query,
		payment.ID,
		payment.BookingID,
		payment.UserID,
		payment.Amount,
		payment.Currency,
		payment.Status,
		payment.PaymentMethod,
		payment.StripePaymentIntentID,
		payment.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create payment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// MarkFailedByIntent marks payments matching a payment intent as failed
func (r *PaymentRepository) MarkFailedByIntent(paymentIntentID string) error {
	query := `
		UPDATE payments
		SET status = 'failed'
		WHERE stripe_payment_intent_id = $1
	`

	_, err := r.db.Exec(query, paymentIntentID)
	if err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}

	return nil
}

// ListByBooking retrieves payments for a booking, newest first
func (r *PaymentRepository) ListByBooking(bookingID uuid.UUID) ([]*models.Payment, error) {
	var payments []*models.Payment

	query := `
		SELECT id, booking_id, user_id, amount, currency,
		       status, payment_method, stripe_payment_intent_id, created_at
		FROM payments
		WHERE booking_id = $1
		ORDER BY created_at DESC
	`

	err := r.db.Select(&payments, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, nil
}

// NewPayment builds a payment row for a succeeded checkout
func NewPayment(bookingID, userID uuid.UUID, amount float64, currency, paymentIntentID string) *models.Payment {
	return &models.Payment{
		ID:                    uuid.New(),
		BookingID:             bookingID,
		UserID:                userID,
		Amount:                amount,
		Currency:              currency,
		Status:                models.PaymentStatusSucceeded,
		PaymentMethod:         "card",
		StripePaymentIntentID: paymentIntentID,
		CreatedAt:             time.Now(),
	}
}
