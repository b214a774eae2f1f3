package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davidzorentals/booking-backend/internal/database"
	"github.com/davidzorentals/booking-backend/internal/middleware"
)

const notificationPageSize = 50

// NotificationHandler serves the staff dashboard notification feed
type NotificationHandler struct {
	notificationRepo *database.NotificationRepository
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationRepo *database.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepo: notificationRepo,
	}
}

// ListNotifications handles GET /api/v1/notifications (staff only)
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	notifications, err := h.notificationRepo.ListByUser(userID, notificationPageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

// MarkRead handles POST /api/v1/notifications/:id/read (staff only)
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Notification ID must be a valid UUID",
		})
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	if err := h.notificationRepo.MarkRead(id, userID); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Notification not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked read"})
}
