package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/davidzorentals/booking-backend/internal/models"
)

// VehicleRepository handles vehicle catalog reads
type VehicleRepository struct {
	db DB
}

// NewVehicleRepository creates a new vehicle repository
func NewVehicleRepository(db DB) *VehicleRepository {
	return &VehicleRepository{
		db: db,
	}
}

const vehicleColumns = `id, make, model, year, vehicle_type, seats,
	       description, price_per_day, is_active, created_at, updated_at`

// GetActive retrieves an active vehicle by ID
func (r *VehicleRepository) GetActive(id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle

	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1 AND is_active = true`

	err := r.db.Get(&vehicle, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	return &vehicle, nil
}

// ListActive retrieves all active vehicles
func (r *VehicleRepository) ListActive() ([]*models.Vehicle, error) {
	var vehicles []*models.Vehicle

	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE is_active = true ORDER BY created_at DESC`

	err := r.db.Select(&vehicles, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}

	return vehicles, nil
}
