package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/davidzorentals/booking-backend/internal/database"
	"github.com/davidzorentals/booking-backend/internal/models"
)

// IdentityService maps guest contact details onto portal users so a
// returning guest's bookings land on one account
type IdentityService struct {
	userRepo *database.UserRepository
	logger   *logrus.Logger
}

// NewIdentityService creates a new identity service
func NewIdentityService(userRepo *database.UserRepository, logger *logrus.Logger) *IdentityService {
	return &IdentityService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Resolve finds or creates the user behind a guest submission. Email
// matches take precedence over phone matches when both are given, and
// whichever contact field the matched user lacks is backfilled. Two
// existing users are never merged.
func (s *IdentityService) Resolve(name, phone, email string) (*models.User, error) {
	if email != "" {
		user, err := s.userRepo.GetByEmail(email)
		if err != nil {
			return nil, err
		}
		if user != nil {
			if phone != "" && !user.PhoneNumber.Valid {
				if err := s.userRepo.BackfillPhone(user.ID, phone); err != nil {
					return nil, err
				}
				user.PhoneNumber = models.NewNullString(phone)
			}
			s.logger.WithField("user_id", user.ID).Debug("Guest resolved by email")
			return user, nil
		}
	}

	if phone != "" {
		user, err := s.userRepo.GetByPhone(phone)
		if err != nil {
			return nil, err
		}
		if user != nil {
			if email != "" && !user.Email.Valid {
				if err := s.userRepo.BackfillEmail(user.ID, email); err != nil {
					return nil, err
				}
				user.Email = models.NewNullString(email)
			}
			s.logger.WithField("user_id", user.ID).Debug("Guest resolved by phone")
			return user, nil
		}
	}

	now := time.Now()
	user := &models.User{
		ID:          uuid.New(),
		PhoneNumber: models.NewNullString(phone),
		Email:       models.NewNullString(email),
		FullName:    name,
		Role:        models.RoleCustomer,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("Guest user created")

	return user, nil
}
