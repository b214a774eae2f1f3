package services

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/davidzorentals/booking-backend/internal/config"
	"github.com/davidzorentals/booking-backend/internal/database"
	"github.com/davidzorentals/booking-backend/internal/models"
)

var (
	// ErrLinkUserNotFound indicates no user exists for the phone number
	ErrLinkUserNotFound = fmt.Errorf("no user found for this phone number")

	// ErrLinkInvalid indicates the presented token matched no usable link
	ErrLinkInvalid = fmt.Errorf("magic link is invalid, expired or already used")
)

// MagicLinkService issues and verifies single-use dashboard links
// delivered over WhatsApp. Only bcrypt hashes of tokens are stored, so
// a database leak does not leak working links.
type MagicLinkService struct {
	userRepo  *database.UserRepository
	linkRepo  *database.MagicLinkRepository
	messenger Messenger
	cfg       *config.Config
	logger    *logrus.Logger
}

// Messenger sends a message to an E.164 phone number
type Messenger interface {
	Send(to, body string) error
}

// NewMagicLinkService creates a new magic link service
func NewMagicLinkService(userRepo *database.UserRepository, linkRepo *database.MagicLinkRepository, messenger Messenger, cfg *config.Config, logger *logrus.Logger) *MagicLinkService {
	return &MagicLinkService{
		userRepo:  userRepo,
		linkRepo:  linkRepo,
		messenger: messenger,
		cfg:       cfg,
		logger:    logger,
	}
}

// RequestLink creates a magic link for the user behind the phone
// number and delivers it over WhatsApp
func (s *MagicLinkService) RequestLink(phone string) error {
	user, err := s.userRepo.GetByPhone(phone)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrLinkUserNotFound
	}

	token, err := generateLinkToken()
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), s.cfg.Security.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash token: %w", err)
	}

	now := time.Now()
	link := &models.MagicLink{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: string(hash),
		ExpiresAt: now.Add(s.cfg.Security.MagicLinkExpiry),
		CreatedAt: now,
	}

	if err := s.linkRepo.Create(link); err != nil {
		return err
	}

	linkURL := fmt.Sprintf("%s/auth/magic?uid=%s&token=%s", s.cfg.App.BaseURL, user.ID, token)
	msg := fmt.Sprintf("Tap to open your dashboard: %s\nThe link works once and expires in %d minutes.",
		linkURL, int(s.cfg.Security.MagicLinkExpiry.Minutes()))

	if err := s.messenger.Send(phone, msg); err != nil {
		return models.NewExternalServiceError("whatsapp", err)
	}

	s.logger.WithField("user_id", user.ID).Info("Magic link issued")

	return nil
}

// VerifyLink consumes a magic link token for a user. The token is
// compared against every usable link hash; a match is marked used
// atomically so it cannot authenticate twice.
func (s *MagicLinkService) VerifyLink(userID uuid.UUID, token string) (*models.User, error) {
	links, err := s.linkRepo.ListUsableByUser(userID)
	if err != nil {
		return nil, err
	}

	for _, link := range links {
		if bcrypt.CompareHashAndPassword([]byte(link.TokenHash), []byte(token)) != nil {
			continue
		}

		used, err := s.linkRepo.MarkUsed(link.ID)
		if err != nil {
			return nil, err
		}
		if !used {
			// Lost a race with another request holding the same token
			return nil, ErrLinkInvalid
		}

		user, err := s.userRepo.GetByID(userID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrLinkInvalid
		}

		s.logger.WithField("user_id", userID).Info("Magic link verified")
		return user, nil
	}

	return nil, ErrLinkInvalid
}

// generateLinkToken produces a URL-safe random token
func generateLinkToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
