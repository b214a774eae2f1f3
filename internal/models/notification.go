package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification types surfaced on the staff dashboard
const (
	NotificationTypeBookingConfirmed = "booking_confirmed"
	NotificationTypePaymentFailed    = "payment_failed"
	NotificationTypeRefundRequired   = "refund_required"
	NotificationTypeDamageReport     = "damage_report"
)

// Notification is a dashboard message for a staff user
type Notification struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Title     string     `json:"title" db:"title"`
	Message   string     `json:"message" db:"message"`
	Type      string     `json:"type" db:"type"`
	RelatedID *uuid.UUID `json:"related_id,omitempty" db:"related_id"`
	Read      bool       `json:"read" db:"read"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
