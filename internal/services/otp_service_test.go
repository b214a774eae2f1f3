package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOTPService(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewOTPService(newMockDatabase(db))

	assert.NotNil(t, service)
}

func TestGenerateOTP(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewOTPService(newMockDatabase(db))
	phone := "+14155550100"

	// Expect invalidate query
	mock.ExpectExec("UPDATE otp_verifications").
		WithArgs(phone).
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Expect insert query
	mock.ExpectExec("INSERT INTO otp_verifications").
		WithArgs(phone, sqlmock.AnyArg(), sqlmock.AnyArg(), MaxOTPAttempts, "203.0.113.10", "test-agent").
		WillReturnResult(sqlmock.NewResult(1, 1))

	otp, err := service.GenerateOTP(phone, "203.0.113.10", "test-agent")
	require.NoError(t, err)
	assert.Len(t, otp, 6)
	assert.Regexp(t, "^[0-9]{6}$", otp)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateOTP_Uniqueness(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewOTPService(newMockDatabase(db))
	phone := "+14155550100"

	otps := make(map[string]bool)

	for i := 0; i < 100; i++ {
		mock.ExpectExec("UPDATE otp_verifications").
			WithArgs(phone).
			WillReturnResult(sqlmock.NewResult(0, 0))

		mock.ExpectExec("INSERT INTO otp_verifications").
			WithArgs(phone, sqlmock.AnyArg(), sqlmock.AnyArg(), MaxOTPAttempts, "", "").
			WillReturnResult(sqlmock.NewResult(1, 1))

		otp, err := service.GenerateOTP(phone, "", "")
		require.NoError(t, err)
		otps[otp] = true
	}

	// Should generate different OTPs (at least 80% unique)
	assert.Greater(t, len(otps), 80)
}

func TestValidateOTP_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewOTPService(newMockDatabase(db))
	phone := "+14155550100"
	otp := "123456"
	expiresAt := time.Now().Add(5 * time.Minute)

	mock.ExpectQuery("SELECT (.+) FROM otp_verifications").
		WithArgs(phone).
		WillReturnRows(otpRows(phone, otp, expiresAt, false, 0))

	// Mock increment attempts
	mock.ExpectExec("UPDATE otp_verifications SET attempts").
		WithArgs(phone).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Mock mark as verified
	mock.ExpectExec("UPDATE otp_verifications SET verified").
		WithArgs(sqlmock.AnyArg(), phone).
		WillReturnResult(sqlmock.NewResult(0, 1))

	valid, err := service.ValidateOTP(phone, otp)
	require.NoError(t, err)
	assert.True(t, valid)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateOTP_InvalidCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewOTPService(newMockDatabase(db))
	phone := "+14155550100"
	expiresAt := time.Now().Add(5 * time.Minute)

	mock.ExpectQuery("SELECT (.+) FROM otp_verifications").
		WithArgs(phone).
		WillReturnRows(otpRows(phone, "123456", expiresAt, false, 0))

	mock.ExpectExec("UPDATE otp_verifications SET attempts").
		WithArgs(phone).
		WillReturnResult(sqlmock.NewResult(0, 1))

	valid, err := service.ValidateOTP(phone, "999999")
	assert.ErrorIs(t, err, ErrOTPInvalid)
	assert.False(t, valid)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateOTP_Expired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewOTPService(newMockDatabase(db))
	phone := "+14155550100"
	expiresAt := time.Now().Add(-1 * time.Minute)

	mock.ExpectQuery("SELECT (.+) FROM otp_verifications").
		WithArgs(phone).
		WillReturnRows(otpRows(phone, "123456", expiresAt, false, 0))

	valid, err := service.ValidateOTP(phone, "123456")
	assert.ErrorIs(t, err, ErrOTPExpired)
	assert.False(t, valid)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateOTP_MaxAttemptsExceeded(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewOTPService(newMockDatabase(db))
	phone := "+14155550100"
	expiresAt := time.Now().Add(5 * time.Minute)

	mock.ExpectQuery("SELECT (.+) FROM otp_verifications").
		WithArgs(phone).
		WillReturnRows(otpRows(phone, "123456", expiresAt, false, MaxOTPAttempts))

	valid, err := service.ValidateOTP(phone, "123456")
	assert.ErrorIs(t, err, ErrMaxAttemptsExceeded)
	assert.False(t, valid)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateOTP_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewOTPService(newMockDatabase(db))
	phone := "+14155550100"

	mock.ExpectQuery("SELECT (.+) FROM otp_verifications").
		WithArgs(phone).
		WillReturnError(sql.ErrNoRows)

	valid, err := service.ValidateOTP(phone, "123456")
	assert.ErrorIs(t, err, ErrNoOTPFound)
	assert.False(t, valid)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRemainingAttempts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewOTPService(newMockDatabase(db))
	phone := "+14155550100"
	expiresAt := time.Now().Add(5 * time.Minute)

	mock.ExpectQuery("SELECT (.+) FROM otp_verifications").
		WithArgs(phone).
		WillReturnRows(otpRows(phone, "123456", expiresAt, false, 1))

	remaining, err := service.GetRemainingAttempts(phone)
	require.NoError(t, err)
	assert.Equal(t, MaxOTPAttempts-1, remaining)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanupExpiredOTPs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewOTPService(newMockDatabase(db))

	mock.ExpectExec("DELETE FROM otp_verifications").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 7))

	removed, err := service.CleanupExpiredOTPs()
	require.NoError(t, err)
	assert.Equal(t, int64(7), removed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// otpRows builds a single-row result matching getOTPRecord's columns
func otpRows(phone, code string, expiresAt time.Time, verified bool, attempts int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "phone", "otp_code", "created_at", "expires_at", "verified",
		"verified_at", "attempts", "max_attempts", "ip_address", "user_agent",
	}).AddRow(1, phone, code, time.Now(), expiresAt, verified, nil, attempts, MaxOTPAttempts, nil, nil)
}

// mockDatabase adapts a sqlmock connection to the database.DB
// interface. The sqlx wrapper keeps Get and Select working the same
// way they do against the real connection.
type mockDatabase struct {
	db *sqlx.DB
}

func newMockDatabase(db *sql.DB) *mockDatabase {
	return &mockDatabase{db: sqlx.NewDb(db, "sqlmock")}
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return m.db.Get(dest, query, args...)
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return m.db.Select(dest, query, args...)
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) Close() error {
	return m.db.Close()
}

func (m *mockDatabase) Ping() error {
	return m.db.Ping()
}
