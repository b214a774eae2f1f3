package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidzorentals/booking-backend/internal/config"
)

func testRateLimits() config.RateLimitConfig {
	return config.RateLimitConfig{
		MaxPhoneRequests: 3,
		PhoneWindow:      10 * time.Minute,
		MaxIPRequests:    10,
		IPWindow:         time.Hour,
	}
}

func TestCheckOTPRateLimit_UnderLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewRateLimitService(newMockDatabase(db), testRateLimits())
	phone := "+14155550100"
	ip := "203.0.113.10"

	mock.ExpectQuery("SELECT (.+) FROM otp_rate_limits").
		WithArgs(phone, "phone", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(1, time.Now()))

	mock.ExpectQuery("SELECT (.+) FROM otp_rate_limits").
		WithArgs(ip, "ip", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(2, time.Now()))

	err = service.CheckOTPRateLimit(phone, ip)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckOTPRateLimit_PhoneLimitExceeded(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewRateLimitService(newMockDatabase(db), testRateLimits())
	phone := "+14155550100"
	lastRequest := time.Now().Add(-1 * time.Minute)

	mock.ExpectQuery("SELECT (.+) FROM otp_rate_limits").
		WithArgs(phone, "phone", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(3, lastRequest))

	err = service.CheckOTPRateLimit(phone, "203.0.113.10")
	require.Error(t, err)

	rateLimitErr, ok := err.(*RateLimitError)
	require.True(t, ok)
	assert.Equal(t, "phone", rateLimitErr.Type)
	assert.True(t, rateLimitErr.RetryAfter.After(time.Now()))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckOTPRateLimit_IPLimitExceeded(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewRateLimitService(newMockDatabase(db), testRateLimits())
	phone := "+14155550100"
	ip := "203.0.113.10"

	mock.ExpectQuery("SELECT (.+) FROM otp_rate_limits").
		WithArgs(phone, "phone", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(0, time.Now()))

	mock.ExpectQuery("SELECT (.+) FROM otp_rate_limits").
		WithArgs(ip, "ip", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(10, time.Now()))

	err = service.CheckOTPRateLimit(phone, ip)
	require.Error(t, err)

	rateLimitErr, ok := err.(*RateLimitError)
	require.True(t, ok)
	assert.Equal(t, "ip", rateLimitErr.Type)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckOTPRateLimit_ConfiguredLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Operators can tighten the budget; a single prior request then
	// trips the phone limit
	limits := testRateLimits()
	limits.MaxPhoneRequests = 1
	service := NewRateLimitService(newMockDatabase(db), limits)

	mock.ExpectQuery("SELECT (.+) FROM otp_rate_limits").
		WithArgs("+14155550100", "phone", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(1, time.Now()))

	err = service.CheckOTPRateLimit("+14155550100", "")
	require.Error(t, err)

	rateLimitErr, ok := err.(*RateLimitError)
	require.True(t, ok)
	assert.Equal(t, "phone", rateLimitErr.Type)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordOTPRequest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewRateLimitService(newMockDatabase(db), testRateLimits())

	mock.ExpectExec("INSERT INTO otp_rate_limits").
		WithArgs("+14155550100", "phone").
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectExec("INSERT INTO otp_rate_limits").
		WithArgs("203.0.113.10", "ip").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = service.RecordOTPRequest("+14155550100", "203.0.113.10")
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsRateLimited(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewRateLimitService(newMockDatabase(db), testRateLimits())

	t.Run("Limited", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM otp_rate_limits").
			WithArgs("+14155550100", "phone", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(3, time.Now()))

		limited, retryAfter, err := service.IsRateLimited("+14155550100", "phone")
		require.NoError(t, err)
		assert.True(t, limited)
		assert.False(t, retryAfter.IsZero())
	})

	t.Run("Not Limited", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM otp_rate_limits").
			WithArgs("+14155550100", "phone", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(1, time.Now()))

		limited, _, err := service.IsRateLimited("+14155550100", "phone")
		require.NoError(t, err)
		assert.False(t, limited)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanupExpiredRateLimits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewRateLimitService(newMockDatabase(db), testRateLimits())

	mock.ExpectExec("DELETE FROM otp_rate_limits").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 4))

	removed, err := service.CleanupExpiredRateLimits()
	require.NoError(t, err)
	assert.Equal(t, int64(4), removed)

	assert.NoError(t, mock.ExpectationsWereMet())
}
