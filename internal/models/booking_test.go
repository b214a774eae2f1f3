package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUnits(t *testing.T) {
	booking := &Booking{
		StartDate: time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 4, booking.Units())

	booking.EndDate = booking.StartDate.AddDate(0, 0, 1)
	assert.Equal(t, 1, booking.Units())
}

func TestAssetID(t *testing.T) {
	propertyID := uuid.New()
	vehicleID := uuid.New()

	t.Run("Property", func(t *testing.T) {
		b := &Booking{BookingType: BookingTypeProperty, PropertyID: &propertyID}
		assert.Equal(t, propertyID, b.AssetID())
	})

	t.Run("Vehicle", func(t *testing.T) {
		b := &Booking{BookingType: BookingTypeVehicle, VehicleID: &vehicleID}
		assert.Equal(t, vehicleID, b.AssetID())
	})

	t.Run("Unset", func(t *testing.T) {
		b := &Booking{BookingType: BookingTypeProperty}
		assert.Equal(t, uuid.Nil, b.AssetID())
	})
}

func TestAmountsEqual(t *testing.T) {
	assert.True(t, AmountsEqual(455.00, 455.001))
	assert.True(t, AmountsEqual(0.1+0.2, 0.3))
	assert.False(t, AmountsEqual(455.00, 455.01))
}
