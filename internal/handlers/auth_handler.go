package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/davidzorentals/booking-backend/internal/config"
	"github.com/davidzorentals/booking-backend/internal/database"
	"github.com/davidzorentals/booking-backend/internal/middleware"
	"github.com/davidzorentals/booking-backend/internal/models"
	"github.com/davidzorentals/booking-backend/internal/services"
	"github.com/davidzorentals/booking-backend/internal/utils"
	"github.com/davidzorentals/booking-backend/pkg/jwt"
	"github.com/davidzorentals/booking-backend/pkg/validator"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	jwtService       *jwt.Service
	otpService       *services.OTPService
	magicLinkService *services.MagicLinkService
	rateLimitService *services.RateLimitService
	phoneValidator   *validator.PhoneValidator
	userRepository   *database.UserRepository
	sessionRepo      *database.SessionRepository
	messenger        services.Messenger
	config           *config.Config
	logger           *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	jwtService *jwt.Service,
	otpService *services.OTPService,
	magicLinkService *services.MagicLinkService,
	rateLimitService *services.RateLimitService,
	phoneValidator *validator.PhoneValidator,
	userRepository *database.UserRepository,
	sessionRepo *database.SessionRepository,
	messenger services.Messenger,
	cfg *config.Config,
	logger *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		jwtService:       jwtService,
		otpService:       otpService,
		magicLinkService: magicLinkService,
		rateLimitService: rateLimitService,
		phoneValidator:   phoneValidator,
		userRepository:   userRepository,
		sessionRepo:      sessionRepo,
		messenger:        messenger,
		config:           cfg,
		logger:           logger,
	}
}

// SendOTP handles POST /api/v1/auth/send-otp
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req models.SendOTPRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	phone, err := h.phoneValidator.Validate(req.PhoneNumber)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_phone",
			Message: err.Error(),
		})
		return
	}

	clientIP := utils.GetRealIP(c)
	userAgent := utils.GetUserAgent(c)

	if err := h.rateLimitService.CheckOTPRateLimit(phone, clientIP); err != nil {
		if rateLimitErr, ok := err.(*services.RateLimitError); ok {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate_limit_exceeded",
				"message":     rateLimitErr.Message,
				"retry_after": rateLimitErr.RetryAfter,
				"type":        rateLimitErr.Type,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "rate_limit_check_failed",
			Message: "Failed to check rate limit",
		})
		return
	}

	otp, err := h.otpService.GenerateOTP(phone, clientIP, userAgent)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "otp_generation_failed",
			Message: "Failed to generate OTP",
		})
		return
	}

	if err := h.rateLimitService.RecordOTPRequest(phone, clientIP); err != nil {
		// The OTP is already stored; log and keep going
		c.Error(err)
	}

	if h.config.WhatsApp.Mode == "production" {
		msg := fmt.Sprintf("Your verification code is %s. It expires in %d minutes. Do not share this code.",
			otp, int(services.OTPExpiryDuration.Minutes()))
		if err := h.messenger.Send(phone, msg); err != nil {
			h.logger.WithError(err).WithField("phone", phone).Error("Failed to deliver OTP")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "delivery_failed",
				Message: "Failed to send verification code. Please try again.",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":    "Verification code sent over WhatsApp",
			"phone":      phone,
			"expires_in": int(services.OTPExpiryDuration.Seconds()),
		})
		return
	}

	// Development mode: return the code in the response, nothing is sent
	c.JSON(http.StatusOK, gin.H{
		"message":    "Verification code generated (dev mode, nothing sent)",
		"phone":      phone,
		"expires_in": int(services.OTPExpiryDuration.Seconds()),
		"otp":        otp,
		"mode":       "development",
	})
}

// VerifyOTP handles POST /api/v1/auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req models.VerifyOTPRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	phone, err := h.phoneValidator.Validate(req.PhoneNumber)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_phone",
			Message: err.Error(),
		})
		return
	}

	valid, err := h.otpService.ValidateOTP(phone, req.OTP)
	if err != nil || !valid {
		status := http.StatusUnauthorized
		message := "Invalid verification code"
		switch err {
		case services.ErrOTPExpired:
			message = "Verification code has expired. Please request a new one."
		case services.ErrMaxAttemptsExceeded:
			status = http.StatusTooManyRequests
			message = "Too many failed attempts. Please request a new code."
		case services.ErrNoOTPFound, services.ErrOTPAlreadyUsed, services.ErrOTPInvalid:
			// Keep the generic message
		default:
			if err != nil {
				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Error:   "verification_failed",
					Message: "Failed to verify code",
				})
				return
			}
		}
		c.JSON(status, ErrorResponse{
			Error:   "invalid_otp",
			Message: message,
		})
		return
	}

	user, isNew, err := h.userRepository.GetOrCreateByPhone(phone)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.userRepository.MarkPhoneVerified(user.ID); err != nil {
		respondError(c, err)
		return
	}

	h.recordSession(c, user.ID, "otp")

	h.issueSession(c, user, gin.H{
		"message":     "Phone verified",
		"is_new_user": isNew,
	})
}

// RequestLink handles POST /api/v1/auth/request-link
func (h *AuthHandler) RequestLink(c *gin.Context) {
	var req models.RequestLinkRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	phone, err := h.phoneValidator.Validate(req.PhoneNumber)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_phone",
			Message: err.Error(),
		})
		return
	}

	clientIP := utils.GetRealIP(c)
	if err := h.rateLimitService.CheckOTPRateLimit(phone, clientIP); err != nil {
		if rateLimitErr, ok := err.(*services.RateLimitError); ok {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate_limit_exceeded",
				"message":     rateLimitErr.Message,
				"retry_after": rateLimitErr.RetryAfter,
			})
			return
		}
		respondError(c, err)
		return
	}

	err = h.magicLinkService.RequestLink(phone)
	if err != nil && err != services.ErrLinkUserNotFound {
		respondError(c, err)
		return
	}

	if err := h.rateLimitService.RecordOTPRequest(phone, clientIP); err != nil {
		c.Error(err)
	}

	// Same response whether or not the phone is known, so the endpoint
	// cannot be used to probe for accounts
	c.JSON(http.StatusOK, gin.H{
		"message": "If an account exists for this number, a link is on its way",
	})
}

// VerifyMagic handles GET /api/v1/auth/magic
func (h *AuthHandler) VerifyMagic(c *gin.Context) {
	uid := c.Query("uid")
	token := c.Query("token")

	userID, err := uuid.Parse(uid)
	if err != nil || token == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_link",
			Message: "The link is malformed",
		})
		return
	}

	user, err := h.magicLinkService.VerifyLink(userID, token)
	if err != nil {
		if err == services.ErrLinkInvalid {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_link",
				Message: "The link is invalid, expired or already used",
			})
			return
		}
		respondError(c, err)
		return
	}

	h.recordSession(c, user.ID, "magic_link")

	accessToken, err := h.jwtService.GenerateAccessToken(user.ID, user.PhoneNumber.String, string(user.Role))
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, accessToken)
	c.Redirect(http.StatusFound, h.config.App.BaseURL+"/dashboard")
}

// Session handles GET /api/v1/auth/session (requires auth)
func (h *AuthHandler) Session(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	user, err := h.userRepository.GetByID(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Session user no longer exists",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.secureCookies(), true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// issueSession generates the token pair, sets the session cookie and
// responds with the tokens merged into extra
func (h *AuthHandler) issueSession(c *gin.Context, user *models.User, extra gin.H) {
	accessToken, err := h.jwtService.GenerateAccessToken(user.ID, user.PhoneNumber.String, string(user.Role))
	if err != nil {
		respondError(c, err)
		return
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(user.ID, user.PhoneNumber.String)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, accessToken)

	resp := gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    int(h.config.JWT.AccessTokenExpiry.Seconds()),
		"user":          user,
	}
	for k, v := range extra {
		resp[k] = v
	}

	c.JSON(http.StatusOK, resp)
}

// recordSession stores a login session row with the device classified
// from the User-Agent. Failures are logged, never fatal.
func (h *AuthHandler) recordSession(c *gin.Context, userID uuid.UUID, authMethod string) {
	rawUA := utils.GetUserAgent(c)
	device := utils.DescribeDevice(rawUA)
	now := time.Now()

	session := &models.LoginSession{
		ID:         uuid.New(),
		UserID:     userID,
		DeviceType: device.DeviceType,
		DeviceName: models.NewNullString(device.DeviceName),
		Browser:    models.NewNullString(device.Browser),
		IPAddress:  models.NewNullString(utils.GetRealIP(c)),
		UserAgent:  models.NewNullString(rawUA),
		AuthMethod: authMethod,
		CreatedAt:  now,
		LastSeenAt: now,
	}

	if err := h.sessionRepo.Create(session); err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Warn("Failed to record login session")
	}
}

// setSessionCookie sets the httpOnly session cookie for browser clients
func (h *AuthHandler) setSessionCookie(c *gin.Context, accessToken string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		middleware.SessionCookieName,
		accessToken,
		int(h.config.JWT.AccessTokenExpiry.Seconds()),
		"/",
		"",
		h.secureCookies(),
		true,
	)
}

func (h *AuthHandler) secureCookies() bool {
	return h.config.Server.Environment == "production"
}
