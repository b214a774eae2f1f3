package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the outcome of a payment attempt
type PaymentStatus string

const (
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment records money movement for a booking. The payment intent ID
// is unique so replayed provider events cannot insert twice.
type Payment struct {
	ID                    uuid.UUID     `json:"id" db:"id"`
	BookingID             uuid.UUID     `json:"booking_id" db:"booking_id"`
	UserID                uuid.UUID     `json:"user_id" db:"user_id"`
	Amount                float64       `json:"amount" db:"amount"`
	Currency              string        `json:"currency" db:"currency"`
	Status                PaymentStatus `json:"status" db:"status"`
	PaymentMethod         string        `json:"payment_method" db:"payment_method"`
	StripePaymentIntentID string        `json:"stripe_payment_intent_id" db:"stripe_payment_intent_id"`
	CreatedAt             time.Time     `json:"created_at" db:"created_at"`
}
