package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/davidzorentals/booking-backend/internal/middleware"
	"github.com/davidzorentals/booking-backend/internal/models"
	"github.com/davidzorentals/booking-backend/internal/services"
)

// BookingHandler handles booking and checkout HTTP requests
type BookingHandler struct {
	checkoutService *services.CheckoutService
	bookingService  *services.BookingService
	logger          *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(checkoutService *services.CheckoutService, bookingService *services.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		checkoutService: checkoutService,
		bookingService:  bookingService,
		logger:          logger,
	}
}

// CreateCheckout handles POST /api/v1/bookings/checkout.
// Open to guests; the guest is resolved to a user by contact details.
func (h *BookingHandler) CreateCheckout(c *gin.Context) {
	var req models.CreateBookingRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	resp, err := h.checkoutService.InitiateCheckout(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListBookings handles GET /api/v1/bookings (requires auth)
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	bookings, err := h.bookingService.ListByUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// GetBooking handles GET /api/v1/bookings/:id (requires auth).
// Customers see only their own bookings; staff see all.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Booking ID must be a valid UUID",
		})
		return
	}

	booking, err := h.bookingService.GetByID(bookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	if booking == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Booking not found",
		})
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role := models.UserRole(c.GetString(middleware.ContextRole))
	if booking.UserID != userID && role != models.RoleManager && role != models.RoleAdmin {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Booking not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}
