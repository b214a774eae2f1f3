package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/davidzorentals/booking-backend/internal/models"
)

// SessionRepository handles login session records
type SessionRepository struct {
	db DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{
		db: db,
	}
}

// Create inserts a login session row
func (r *SessionRepository) Create(session *models.LoginSession) error {
	query := `
		INSERT INTO login_sessions (
			id, user_id, device_type, device_name, browser,
			ip_address, user_agent, auth_method, created_at, last_seen_at, revoked
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(
		query,
		session.ID,
		session.UserID,
		session.DeviceType,
		session.DeviceName,
		session.Browser,
		session.IPAddress,
		session.UserAgent,
		session.AuthMethod,
		session.CreatedAt,
		session.LastSeenAt,
		session.Revoked,
	)
	if err != nil {
		return fmt.Errorf("failed to create login session: %w", err)
	}

	return nil
}

// ListByUser retrieves a user's login sessions, newest first
func (r *SessionRepository) ListByUser(userID uuid.UUID) ([]*models.LoginSession, error) {
	var sessions []*models.LoginSession

	query := `
		SELECT id, user_id, device_type, device_name, browser,
		       ip_address, user_agent, auth_method, created_at,
		       last_seen_at, revoked_at, revoked
		FROM login_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	err := r.db.Select(&sessions, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list login sessions: %w", err)
	}

	return sessions, nil
}

// Revoke marks a session as revoked
func (r *SessionRepository) Revoke(id, userID uuid.UUID) error {
	query := `
		UPDATE login_sessions
		SET revoked = true,
		    revoked_at = $3
		WHERE id = $1
		  AND user_id = $2
		  AND revoked = false
	`

	result, err := r.db.Exec(query, id, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to revoke login session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("login session not found")
	}

	return nil
}
