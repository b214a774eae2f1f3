package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NullString wraps sql.NullString to provide proper JSON marshaling
type NullString struct {
	sql.NullString
}

// MarshalJSON implements json.Marshaler
func (ns NullString) MarshalJSON() ([]byte, error) {
	if ns.Valid {
		return json.Marshal(ns.String)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements json.Unmarshaler
func (ns *NullString) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s != nil {
		ns.Valid = true
		ns.String = *s
	} else {
		ns.Valid = false
	}
	return nil
}

// NewNullString builds a valid NullString from a plain string
func NewNullString(s string) NullString {
	return NullString{sql.NullString{String: s, Valid: s != ""}}
}

// NullTime wraps sql.NullTime to provide proper JSON marshaling
type NullTime struct {
	sql.NullTime
}

// MarshalJSON implements json.Marshaler
func (nt NullTime) MarshalJSON() ([]byte, error) {
	if nt.Valid {
		return json.Marshal(nt.Time)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements json.Unmarshaler
func (nt *NullTime) UnmarshalJSON(data []byte) error {
	var t *time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	if t != nil {
		nt.Valid = true
		nt.Time = *t
	} else {
		nt.Valid = false
	}
	return nil
}

// UserRole represents the role of a user
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleManager  UserRole = "manager"
	RoleAdmin    UserRole = "admin"
)

// User represents a portal user. Guests are created lazily on their
// first booking or OTP request, so either phone or email may be absent.
type User struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	PhoneNumber      NullString `json:"phone_number,omitempty" db:"phone_number"`
	Email            NullString `json:"email,omitempty" db:"email"`
	FullName         string     `json:"full_name" db:"full_name"`
	Role             UserRole   `json:"role" db:"role"`
	PhoneVerified    bool       `json:"phone_verified" db:"phone_verified"`
	WhatsAppVerified bool       `json:"whatsapp_verified" db:"whatsapp_verified"`
	LastLoginAt      NullTime   `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// IsStaff reports whether the user sees manager-facing surfaces
func (u *User) IsStaff() bool {
	return u.Role == RoleManager || u.Role == RoleAdmin
}

// OTPVerification represents an OTP verification record
type OTPVerification struct {
	ID          int64      `json:"id" db:"id"`
	Phone       string     `json:"phone" db:"phone"`
	OTPCode     string     `json:"-" db:"otp_code"` // Never expose in JSON
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at" db:"expires_at"`
	Verified    bool       `json:"verified" db:"verified"`
	VerifiedAt  NullTime   `json:"verified_at,omitempty" db:"verified_at"`
	Attempts    int        `json:"attempts" db:"attempts"`
	MaxAttempts int        `json:"max_attempts" db:"max_attempts"`
	IPAddress   NullString `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent   NullString `json:"user_agent,omitempty" db:"user_agent"`
}

// OTPRateLimit represents rate limiting state for OTP requests
type OTPRateLimit struct {
	ID            int64     `json:"id" db:"id"`
	Phone         string    `json:"phone" db:"phone"`
	RequestCount  int       `json:"request_count" db:"request_count"`
	WindowStart   time.Time `json:"window_start" db:"window_start"`
	BlockedUntil  NullTime  `json:"blocked_until,omitempty" db:"blocked_until"`
	LastRequestAt time.Time `json:"last_request_at" db:"last_request_at"`
}

// MagicLink is a single-use dashboard-access token delivered over
// WhatsApp. Only the bcrypt hash of the token is stored.
type MagicLink struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	TokenHash string    `json:"-" db:"token_hash"`
	Used      bool      `json:"used" db:"used"`
	UsedAt    NullTime  `json:"used_at,omitempty" db:"used_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsUsable reports whether the link can still authenticate a user
func (m *MagicLink) IsUsable() bool {
	return !m.Used && time.Now().Before(m.ExpiresAt)
}

// LoginSession records a successful authentication and the device it
// came from, for the security dashboard
type LoginSession struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	DeviceType  string     `json:"device_type" db:"device_type"`
	DeviceName  NullString `json:"device_name,omitempty" db:"device_name"`
	Browser     NullString `json:"browser,omitempty" db:"browser"`
	IPAddress   NullString `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent   NullString `json:"user_agent,omitempty" db:"user_agent"`
	AuthMethod  string     `json:"auth_method" db:"auth_method"` // otp or magic_link
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	LastSeenAt  time.Time  `json:"last_seen_at" db:"last_seen_at"`
	RevokedAt   NullTime   `json:"revoked_at,omitempty" db:"revoked_at"`
	Revoked     bool       `json:"revoked" db:"revoked"`
}

// SendOTPRequest represents the request to send an OTP
type SendOTPRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
}

// VerifyOTPRequest represents the request to verify an OTP
type VerifyOTPRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
}

// RequestLinkRequest represents the request for a magic dashboard link
type RequestLinkRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
}
