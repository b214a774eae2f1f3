package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/davidzorentals/booking-backend/internal/database"
	"github.com/davidzorentals/booking-backend/internal/middleware"
	"github.com/davidzorentals/booking-backend/internal/models"
)

// ReportHandler handles damage report HTTP requests
type ReportHandler struct {
	reportRepo       *database.ReportRepository
	bookingRepo      *database.BookingRepository
	userRepo         *database.UserRepository
	notificationRepo *database.NotificationRepository
	logger           *logrus.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(
	reportRepo *database.ReportRepository,
	bookingRepo *database.BookingRepository,
	userRepo *database.UserRepository,
	notificationRepo *database.NotificationRepository,
	logger *logrus.Logger,
) *ReportHandler {
	return &ReportHandler{
		reportRepo:       reportRepo,
		bookingRepo:      bookingRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// CreateReport handles POST /api/v1/reports (requires auth).
// The booking must belong to the reporter.
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var req models.CreateReportRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	bookingID := uuid.MustParse(req.BookingID)

	booking, err := h.bookingRepo.GetByID(bookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	if booking == nil || booking.UserID != userID {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Booking not found",
		})
		return
	}

	now := time.Now()
	report := &models.DamageReport{
		ID:          uuid.New(),
		BookingID:   bookingID,
		ReportedBy:  userID,
		AssetType:   booking.BookingType,
		PropertyID:  booking.PropertyID,
		VehicleID:   booking.VehicleID,
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
		Status:      models.ReportStatusOpen,
		Images:      pq.StringArray(req.Images),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.reportRepo.Create(report); err != nil {
		respondError(c, err)
		return
	}

	h.notifyStaff(report)

	c.JSON(http.StatusCreated, gin.H{"report": report})
}

// ListReports handles GET /api/v1/reports (requires auth).
// Staff see every report; customers see only their own.
func (h *ReportHandler) ListReports(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role := models.UserRole(c.GetString(middleware.ContextRole))

	var reports []*models.DamageReport
	var err error
	if role == models.RoleManager || role == models.RoleAdmin {
		reports, err = h.reportRepo.ListAll()
	} else {
		reports, err = h.reportRepo.ListByReporter(userID)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": reports,
		"count":   len(reports),
	})
}

// notifyStaff tells managers a new damage report came in. Failures are
// logged only.
func (h *ReportHandler) notifyStaff(report *models.DamageReport) {
	staff, err := h.userRepo.ListStaff()
	if err != nil {
		h.logger.WithError(err).Warn("Failed to list staff for report notification")
		return
	}

	for _, user := range staff {
		n := database.NewNotification(
			user.ID,
			"New damage report",
			fmt.Sprintf("%s severity report filed for booking %s: %s", report.Severity, report.BookingID, report.Title),
			models.NotificationTypeDamageReport,
			&report.ID,
		)
		if err := h.notificationRepo.Create(n); err != nil {
			h.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to create notification")
		}
	}
}
