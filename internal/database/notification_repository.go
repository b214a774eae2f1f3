package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/davidzorentals/booking-backend/internal/models"
)

// NotificationRepository handles dashboard notification operations
type NotificationRepository struct {
	db DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db DB) *NotificationRepository {
	return &NotificationRepository{
		db: db,
	}
}

// Create inserts a notification row
func (r *NotificationRepository) Create(n *models.Notification) error {
	query := `
		INSERT INTO notifications (
			id, user_id, title, message, type, related_id, read, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(
		query,
		n.ID,
		n.UserID,
		n.Title,
		n.Message,
		n.Type,
		n.RelatedID,
		n.Read,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// ListByUser retrieves a user's notifications, newest first
func (r *NotificationRepository) ListByUser(userID uuid.UUID, limit int) ([]*models.Notification, error) {
	var notifications []*models.Notification

	query := `
		SELECT id, user_id, title, message, type, related_id, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	err := r.db.Select(&notifications, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead flags a notification as read. Scoped to the owner so one
// user cannot touch another's notifications.
func (r *NotificationRepository) MarkRead(id, userID uuid.UUID) error {
	query := `
		UPDATE notifications
		SET read = true
		WHERE id = $1
		  AND user_id = $2
	`

	result, err := r.db.Exec(query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("notification not found")
	}

	return nil
}

// NewNotification builds a notification for a user
func NewNotification(userID uuid.UUID, title, message, notificationType string, relatedID *uuid.UUID) *models.Notification {
	return &models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notificationType,
		RelatedID: relatedID,
		CreatedAt: time.Now(),
	}
}
