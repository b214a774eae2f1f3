package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davidzorentals/booking-backend/internal/database"
)

// CatalogHandler serves the read-only property and vehicle listings
type CatalogHandler struct {
	propertyRepo *database.PropertyRepository
	vehicleRepo  *database.VehicleRepository
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(propertyRepo *database.PropertyRepository, vehicleRepo *database.VehicleRepository) *CatalogHandler {
	return &CatalogHandler{
		propertyRepo: propertyRepo,
		vehicleRepo:  vehicleRepo,
	}
}

// ListProperties handles GET /api/v1/properties
func (h *CatalogHandler) ListProperties(c *gin.Context) {
	properties, err := h.propertyRepo.ListActive()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"properties": properties,
		"count":      len(properties),
	})
}

// GetProperty handles GET /api/v1/properties/:id
func (h *CatalogHandler) GetProperty(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Property ID must be a valid UUID",
		})
		return
	}

	property, err := h.propertyRepo.GetActive(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if property == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Property not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"property": property})
}

// ListVehicles handles GET /api/v1/vehicles
func (h *CatalogHandler) ListVehicles(c *gin.Context) {
	vehicles, err := h.vehicleRepo.ListActive()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vehicles": vehicles,
		"count":    len(vehicles),
	})
}

// GetVehicle handles GET /api/v1/vehicles/:id
func (h *CatalogHandler) GetVehicle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Vehicle ID must be a valid UUID",
		})
		return
	}

	vehicle, err := h.vehicleRepo.GetActive(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if vehicle == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Vehicle not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}
