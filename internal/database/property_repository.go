package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/davidzorentals/booking-backend/internal/models"
)

// PropertyRepository handles property catalog reads
type PropertyRepository struct {
	db DB
}

// NewPropertyRepository creates a new property repository
func NewPropertyRepository(db DB) *PropertyRepository {
	return &PropertyRepository{
		db: db,
	}
}

const propertyColumns = `id, title, description, address, city, state,
	       property_type, bedrooms, bathrooms, max_guests,
	       price_per_night, cleaning_fee, is_active, created_at, updated_at`

// GetActive retrieves an active property by ID. Inactive listings are
// invisible to the booking flow.
func (r *PropertyRepository) GetActive(id uuid.UUID) (*models.Property, error) {
	var property models.Property

	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1 AND is_active = true`

	err := r.db.Get(&property, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	return &property, nil
}

// ListActive retrieves all active properties
func (r *PropertyRepository) ListActive() ([]*models.Property, error) {
	var properties []*models.Property

	query := `SELECT ` + propertyColumns + ` FROM properties WHERE is_active = true ORDER BY created_at DESC`

	err := r.db.Select(&properties, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}

	return properties, nil
}
