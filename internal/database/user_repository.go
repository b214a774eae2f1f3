package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/davidzorentals/booking-backend/internal/models"
)

// UserRepository handles user database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

const userColumns = `id, phone_number, email, full_name, role,
	       phone_verified, whatsapp_verified, last_login_at,
	       created_at, updated_at`

// Create inserts a new user row
func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (
			id, phone_number, email, full_name, role,
			phone_verified, whatsapp_verified, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(
		query,
		user.ID,
		user.PhoneNumber,
		user.Email,
		user.FullName,
		user.Role,
		user.PhoneVerified,
		user.WhatsAppVerified,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	err := r.db.Get(&user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found, return nil without error
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return &user, nil
}

// GetByPhone retrieves a user by phone number
func (r *UserRepository) GetByPhone(phone string) (*models.User, error) {
	var user models.User

	query := `SELECT ` + userColumns + ` FROM users WHERE phone_number = $1`

	err := r.db.Get(&user, query, phone)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by phone: %w", err)
	}

	return &user, nil
}

// GetByEmail retrieves a user by email address
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User

	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	err := r.db.Get(&user, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// BackfillPhone fills in a user's phone number if it is still empty.
// An existing phone number is never overwritten.
func (r *UserRepository) BackfillPhone(id uuid.UUID, phone string) error {
	query := `
		UPDATE users
		SET phone_number = $1,
		    updated_at = $2
		WHERE id = $3
		  AND (phone_number IS NULL OR phone_number = '')
	`

	_, err := r.db.Exec(query, phone, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to backfill phone: %w", err)
	}

	return nil
}

// BackfillEmail fills in a user's email address if it is still empty.
// An existing email is never overwritten.
func (r *UserRepository) BackfillEmail(id uuid.UUID, email string) error {
	query := `
		UPDATE users
		SET email = $1,
		    updated_at = $2
		WHERE id = $3
		  AND (email IS NULL OR email = '')
	`

	_, err := r.db.Exec(query, email, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to backfill email: %w", err)
	}

	return nil
}

// MarkPhoneVerified flags the user's phone as verified and records the login
func (r *UserRepository) MarkPhoneVerified(id uuid.UUID) error {
	query := `
		UPDATE users
		SET phone_verified = true,
		    last_login_at = $1,
		    updated_at = $1
		WHERE id = $2
	`

	_, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark phone verified: %w", err)
	}

	return nil
}

// ListStaff retrieves all manager and admin users
func (r *UserRepository) ListStaff() ([]*models.User, error) {
	var users []*models.User

	query := `SELECT ` + userColumns + ` FROM users WHERE role IN ('manager', 'admin')`

	err := r.db.Select(&users, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff users: %w", err)
	}

	return users, nil
}

// GetOrCreateByPhone gets an existing user or creates a customer with
// a verified phone. Returns whether a new user was created.
func (r *UserRepository) GetOrCreateByPhone(phone string) (*models.User, bool, error) {
	user, err := r.GetByPhone(phone)
	if err != nil {
		return nil, false, err
	}

	if user != nil {
		return user, false, nil
	}

	now := time.Now()
	user = &models.User{
		ID:            uuid.New(),
		PhoneNumber:   models.NewNullString(phone),
		FullName:      "",
		Role:          models.RoleCustomer,
		PhoneVerified: true, // Verified via OTP
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := r.Create(user); err != nil {
		return nil, false, err
	}

	return user, true, nil
}
