package database

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/davidzorentals/booking-backend/internal/models"
)

// ReportRepository handles damage report database operations
type ReportRepository struct {
	db DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db DB) *ReportRepository {
	return &ReportRepository{
		db: db,
	}
}

// Create inserts a damage report row
func (r *ReportRepository) Create(report *models.DamageReport) error {
	query := `
		INSERT INTO damage_reports (
			id, booking_id, reported_by, asset_type, property_id, vehicle_id,
			title, description, severity, status, images, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(
		query,
		report.ID,
		report.BookingID,
		report.ReportedBy,
		report.AssetType,
		report.PropertyID,
		report.VehicleID,
		report.Title,
		report.Description,
		report.Severity,
		report.Status,
		report.Images,
		report.CreatedAt,
		report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create damage report: %w", err)
	}

	return nil
}

const reportColumns = `id, booking_id, reported_by, asset_type, property_id, vehicle_id,
	       title, description, severity, status, images, created_at, updated_at`

// ListByReporter retrieves reports filed by a user, newest first
func (r *ReportRepository) ListByReporter(userID uuid.UUID) ([]*models.DamageReport, error) {
	var reports []*models.DamageReport

	query := `SELECT ` + reportColumns + ` FROM damage_reports WHERE reported_by = $1 ORDER BY created_at DESC`

	err := r.db.Select(&reports, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list damage reports: %w", err)
	}

	return reports, nil
}

// ListAll retrieves every report for the staff dashboard, newest first
func (r *ReportRepository) ListAll() ([]*models.DamageReport, error) {
	var reports []*models.DamageReport

	query := `SELECT ` + reportColumns + ` FROM damage_reports ORDER BY created_at DESC`

	err := r.db.Select(&reports, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list damage reports: %w", err)
	}

	return reports, nil
}
