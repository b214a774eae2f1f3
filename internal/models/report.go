package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Damage report severities and statuses
const (
	ReportSeverityLow      = "low"
	ReportSeverityMedium   = "medium"
	ReportSeverityHigh     = "high"
	ReportSeverityCritical = "critical"

	ReportStatusOpen     = "open"
	ReportStatusReviewed = "reviewed"
	ReportStatusResolved = "resolved"
)

// DamageReport is a guest-filed report of damage to a booked asset
type DamageReport struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	BookingID   uuid.UUID      `json:"booking_id" db:"booking_id"`
	ReportedBy  uuid.UUID      `json:"reported_by" db:"reported_by"`
	AssetType   BookingType    `json:"asset_type" db:"asset_type"`
	PropertyID  *uuid.UUID     `json:"property_id,omitempty" db:"property_id"`
	VehicleID   *uuid.UUID     `json:"vehicle_id,omitempty" db:"vehicle_id"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	Severity    string         `json:"severity" db:"severity"`
	Status      string         `json:"status" db:"status"`
	Images      pq.StringArray `json:"images" db:"images"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// CreateReportRequest represents a damage report submission
type CreateReportRequest struct {
	BookingID   string   `json:"booking_id" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Severity    string   `json:"severity" binding:"required"`
	Images      []string `json:"images"`
}

// Validate checks the report submission
func (r *CreateReportRequest) Validate() error {
	if _, err := uuid.Parse(r.BookingID); err != nil {
		return NewValidationError("booking_id", "must be a valid UUID")
	}
	switch r.Severity {
	case ReportSeverityLow, ReportSeverityMedium, ReportSeverityHigh, ReportSeverityCritical:
	default:
		return NewValidationError("severity", "must be low, medium, high or critical")
	}
	return nil
}
