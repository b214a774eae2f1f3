package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidzorentals/booking-backend/internal/database"
	"github.com/davidzorentals/booking-backend/internal/models"
)

func TestIsAvailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewAvailabilityService(database.NewBookingRepository(newMockDatabase(db)), testLogger())

	assetID := uuid.New()
	start := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC)

	t.Run("Free Range", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(assetID, start, end).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		available, err := service.IsAvailable(models.BookingTypeProperty, assetID, start, end)
		require.NoError(t, err)
		assert.True(t, available)
	})

	t.Run("Blocked By Confirmed Booking", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(assetID, start, end).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		available, err := service.IsAvailable(models.BookingTypeVehicle, assetID, start, end)
		require.NoError(t, err)
		assert.False(t, available)
	})

	t.Run("End Not After Start", func(t *testing.T) {
		available, err := service.IsAvailable(models.BookingTypeProperty, assetID, start, start)
		assert.False(t, available)
		assert.True(t, models.IsValidation(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
