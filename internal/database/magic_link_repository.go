package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/davidzorentals/booking-backend/internal/models"
)

// MagicLinkRepository handles magic link token storage
type MagicLinkRepository struct {
	db DB
}

// NewMagicLinkRepository creates a new magic link repository
func NewMagicLinkRepository(db DB) *MagicLinkRepository {
	return &MagicLinkRepository{
		db: db,
	}
}

// Create inserts a magic link row. Only the token hash is stored.
func (r *MagicLinkRepository) Create(link *models.MagicLink) error {
	query := `
		INSERT INTO magic_links (
			id, user_id, token_hash, used, expires_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(
		query,
		link.ID,
		link.UserID,
		link.TokenHash,
		link.Used,
		link.ExpiresAt,
		link.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create magic link: %w", err)
	}

	return nil
}

// ListUsableByUser retrieves a user's unused, unexpired links. The
// caller still has to match the presented token against each hash.
func (r *MagicLinkRepository) ListUsableByUser(userID uuid.UUID) ([]*models.MagicLink, error) {
	var links []*models.MagicLink

	query := `
		SELECT id, user_id, token_hash, used, used_at, expires_at, created_at
		FROM magic_links
		WHERE user_id = $1
		  AND used = false
		  AND expires_at > $2
		ORDER BY created_at DESC
	`

	err := r.db.Select(&links, query, userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list magic links: %w", err)
	}

	return links, nil
}

// MarkUsed consumes a magic link. The used guard makes consumption
// single-shot even if two requests race on the same token.
func (r *MagicLinkRepository) MarkUsed(id uuid.UUID) (bool, error) {
	query := `
		UPDATE magic_links
		SET used = true,
		    used_at = $2
		WHERE id = $1
		  AND used = false
	`

	result, err := r.db.Exec(query, id, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to mark magic link used: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
