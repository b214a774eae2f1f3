package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Property represents a rentable property listing. The booking service
// reads these rows; catalog management lives elsewhere.
type Property struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Description   NullString `json:"description,omitempty" db:"description"`
	Address       NullString `json:"address,omitempty" db:"address"`
	City          NullString `json:"city,omitempty" db:"city"`
	State         NullString `json:"state,omitempty" db:"state"`
	PropertyType  string     `json:"property_type" db:"property_type"`
	Bedrooms      int        `json:"bedrooms" db:"bedrooms"`
	Bathrooms     int        `json:"bathrooms" db:"bathrooms"`
	MaxGuests     int        `json:"max_guests" db:"max_guests"`
	PricePerNight float64    `json:"price_per_night" db:"price_per_night"`
	CleaningFee   float64    `json:"cleaning_fee" db:"cleaning_fee"`
	IsActive      bool       `json:"is_active" db:"is_active"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// DisplayName returns the name shown on checkout pages and messages
func (p *Property) DisplayName() string {
	return p.Title
}

// RatePerUnit returns the nightly rate
func (p *Property) RatePerUnit() float64 {
	return p.PricePerNight
}

// FlatFee returns the one-time cleaning fee
func (p *Property) FlatFee() float64 {
	return p.CleaningFee
}

// Vehicle represents a rentable vehicle listing
type Vehicle struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Make        string     `json:"make" db:"make"`
	Model       string     `json:"model" db:"model"`
	Year        int        `json:"year" db:"year"`
	VehicleType string     `json:"vehicle_type" db:"vehicle_type"`
	Seats       int        `json:"seats" db:"seats"`
	Description NullString `json:"description,omitempty" db:"description"`
	PricePerDay float64    `json:"price_per_day" db:"price_per_day"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// DisplayName returns the name shown on checkout pages and messages
func (v *Vehicle) DisplayName() string {
	return fmt.Sprintf("%s %s", v.Make, v.Model)
}

// RatePerUnit returns the daily rate
func (v *Vehicle) RatePerUnit() float64 {
	return v.PricePerDay
}

// FlatFee returns zero; vehicles carry no flat fee
func (v *Vehicle) FlatFee() float64 {
	return 0
}

// BookableAsset is the pricing view of a property or vehicle
type BookableAsset interface {
	DisplayName() string
	RatePerUnit() float64
	FlatFee() float64
}
