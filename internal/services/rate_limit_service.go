package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/davidzorentals/booking-backend/internal/config"
	"github.com/davidzorentals/booking-backend/internal/database"
)

// RateLimitService throttles OTP requests per phone number and per
// client IP. Limits come from configuration so operators can tighten
// them without a rebuild.
type RateLimitService struct {
	db     database.DB
	limits config.RateLimitConfig
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(db database.DB, limits config.RateLimitConfig) *RateLimitService {
	return &RateLimitService{
		db:     db,
		limits: limits,
	}
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
	Type       string // "phone" or "ip"
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// CheckOTPRateLimit checks whether a phone number or IP has exceeded
// its OTP request budget
func (s *RateLimitService) CheckOTPRateLimit(phone, ip string) error {
	if phone != "" {
		if err := s.checkLimit(phone, "phone", s.limits.MaxPhoneRequests, s.limits.PhoneWindow); err != nil {
			return err
		}
	}

	if ip != "" {
		if err := s.checkLimit(ip, "ip", s.limits.MaxIPRequests, s.limits.IPWindow); err != nil {
			return err
		}
	}

	return nil
}

// checkLimit counts recent requests for one identifier and returns a
// RateLimitError when the budget is spent
func (s *RateLimitService) checkLimit(identifier, identifierType string, maxRequests int, window time.Duration) error {
	count, lastRequest, err := s.requestsInWindow(identifier, identifierType, window)
	if err != nil {
		return fmt.Errorf("failed to check %s rate limit: %w", identifierType, err)
	}

	if count >= maxRequests {
		retryAfter := lastRequest.Add(window)
		subject := "phone number"
		if identifierType == "ip" {
			subject = "IP address"
		}
		return &RateLimitError{
			Message:    fmt.Sprintf("Too many OTP requests for this %s. Please try again after %s", subject, retryAfter.Format("15:04:05")),
			RetryAfter: retryAfter,
			Type:       identifierType,
		}
	}

	return nil
}

// requestsInWindow returns the request count and latest request time
// for an identifier inside the sliding window
func (s *RateLimitService) requestsInWindow(identifier, identifierType string, window time.Duration) (int, time.Time, error) {
	windowStart := time.Now().Add(-window)

	query := `
		SELECT COUNT(*), COALESCE(MAX(created_at), NOW())
		FROM otp_rate_limits
		WHERE identifier = $1
		  AND identifier_type = $2
		  AND created_at > $3
	`

	var count int
	var lastRequest time.Time

	err := s.db.QueryRow(query, identifier, identifierType, windowStart).Scan(&count, &lastRequest)
	if err != nil && err != sql.ErrNoRows {
		return 0, time.Time{}, err
	}

	return count, lastRequest, nil
}

// RecordOTPRequest records an OTP request for rate limiting
func (s *RateLimitService) RecordOTPRequest(phone, ip string) error {
	if phone != "" {
		if err := s.recordRequest(phone, "phone"); err != nil {
			return fmt.Errorf("failed to record phone request: %w", err)
		}
	}

	if ip != "" {
		if err := s.recordRequest(ip, "ip"); err != nil {
			return fmt.Errorf("failed to record IP request: %w", err)
		}
	}

	return nil
}

// recordRequest inserts a rate limit record
func (s *RateLimitService) recordRequest(identifier, identifierType string) error {
	query := `
		INSERT INTO otp_rate_limits (identifier, identifier_type, created_at)
		VALUES ($1, $2, NOW())
	`

	_, err := s.db.Exec(query, identifier, identifierType)
	return err
}

// CleanupExpiredRateLimits removes records older than the widest
// configured window; they can no longer affect any count
func (s *RateLimitService) CleanupExpiredRateLimits() (int64, error) {
	maxWindow := s.limits.IPWindow
	if s.limits.PhoneWindow > maxWindow {
		maxWindow = s.limits.PhoneWindow
	}

	cutoffTime := time.Now().Add(-maxWindow)

	query := `
		DELETE FROM otp_rate_limits
		WHERE created_at < $1
	`

	result, err := s.db.Exec(query, cutoffTime)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup rate limits: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// IsRateLimited checks if an identifier is currently rate limited
func (s *RateLimitService) IsRateLimited(identifier, identifierType string) (bool, time.Time, error) {
	window := s.limits.PhoneWindow
	maxRequests := s.limits.MaxPhoneRequests
	if identifierType == "ip" {
		window = s.limits.IPWindow
		maxRequests = s.limits.MaxIPRequests
	}

	count, lastRequest, err := s.requestsInWindow(identifier, identifierType, window)
	if err != nil {
		return false, time.Time{}, err
	}

	if count >= maxRequests {
		retryAfter := lastRequest.Add(window)
		return true, retryAfter, nil
	}

	return false, time.Time{}, nil
}
