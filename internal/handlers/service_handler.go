package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/appointly/appointment-scheduler/internal/audit"
	"github.com/appointly/appointment-scheduler/internal/httperr"
	"github.com/appointly/appointment-scheduler/internal/httpresp"
	"github.com/appointly/appointment-scheduler/internal/middleware"
	"github.com/appointly/appointment-scheduler/internal/models"
)

type ServiceHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewServiceHandler(db *gorm.DB, auditor *audit.Dispatcher) *ServiceHandler {
	return &ServiceHandler{db: db, audit: auditor}
}

type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	DurationMin int     `json:"duration_min" binding:"required"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

type UpdateServiceRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	DurationMin *int     `json:"duration_min,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}

func (h *ServiceHandler) Create(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request payload.")
		return
	}
	if req.DurationMin <= 0 {
		httperr.BadRequest(c, "invalid_duration", "Duration must be a positive number of minutes.")
		return
	}
	if req.Price < 0 {
		httperr.BadRequest(c, "invalid_price", "Price cannot be negative.")
		return
	}

	service := models.Service{
		ID:          uuid.New(),
		BusinessID:  businessID,
		Name:        req.Name,
		Description: req.Description,
		DurationMin: req.DurationMin,
		Price:       req.Price,
		Category:    req.Category,
		Active:      true,
	}

	if err := h.db.Create(&service).Error; err != nil {
		httperr.Internal(c, "failed_to_create_service", "Failed to create service.")
		return
	}

	h.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &userID,
		Action:     "service_created",
		Entity:     "service",
		EntityID:   &service.ID,
	})

	httpresp.Created(c, service)
}

func (h *ServiceHandler) List(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)

	query := h.db.Where("business_id = ?", businessID)

	switch c.Query("active") {
	case "true":
		query = query.Where("active = ?", true)
	case "false":
		query = query.Where("active = ?", false)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var services []models.Service
	if err := query.Order("name ASC").Find(&services).Error; err != nil {
		httperr.Internal(c, "failed_to_list_services", "Failed to list services.")
		return
	}

	httpresp.List(c, services)
}

func (h *ServiceHandler) Get(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)

	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid service id.")
		return
	}

	var service models.Service
	err = h.db.
		Where("id = ? AND business_id = ?", serviceID, businessID).
		First(&service).Error
	if err != nil {
		respondError(c, err, "service_not_found", "Service not found.")
		return
	}

	c.JSON(http.StatusOK, service)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid service id.")
		return
	}

	var service models.Service
	err = h.db.
		Where("id = ? AND business_id = ?", serviceID, businessID).
		First(&service).Error
	if err != nil {
		respondError(c, err, "service_not_found", "Service not found.")
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request payload.")
		return
	}

	if req.DurationMin != nil {
		if *req.DurationMin <= 0 {
			httperr.BadRequest(c, "invalid_duration", "Duration must be a positive number of minutes.")
			return
		}
		service.DurationMin = *req.DurationMin
	}
	if req.Price != nil {
		if *req.Price < 0 {
			httperr.BadRequest(c, "invalid_price", "Price cannot be negative.")
			return
		}
		service.Price = *req.Price
	}
	if req.Name != nil {
		service.Name = *req.Name
	}
	if req.Description != nil {
		service.Description = *req.Description
	}
	if req.Category != nil {
		service.Category = *req.Category
	}
	if req.Active != nil {
		service.Active = *req.Active
	}

	if err := h.db.Save(&service).Error; err != nil {
		httperr.Internal(c, "failed_to_update_service", "Failed to update service.")
		return
	}

	h.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &userID,
		Action:     "service_updated",
		Entity:     "service",
		EntityID:   &service.ID,
	})

	c.JSON(http.StatusOK, service)
}

// Delete removes a service that no appointment references. Historical
// bookings keep their service row, so deletion is refused instead of
// cascading; deactivate the service to stop new bookings.
func (h *ServiceHandler) Delete(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid service id.")
		return
	}

	var service models.Service
	err = h.db.
		Where("id = ? AND business_id = ?", serviceID, businessID).
		First(&service).Error
	if err != nil {
		respondError(c, err, "service_not_found", "Service not found.")
		return
	}

	var inUse int64
	if err := h.db.Model(&models.Appointment{}).
		Where("service_id = ?", serviceID).
		Count(&inUse).Error; err != nil {

		httperr.Internal(c, "failed_to_delete_service", "Failed to delete service.")
		return
	}
	if inUse > 0 {
		httperr.Conflict(c, "service_in_use", conflictCodes["service_in_use"])
		return
	}

	if err := h.db.Delete(&service).Error; err != nil {
		// Raced with a new booking; the FK reports it.
		if httperr.IsForeignKeyViolation(err) {
			httperr.Conflict(c, "service_in_use", conflictCodes["service_in_use"])
			return
		}
		httperr.Internal(c, "failed_to_delete_service", "Failed to delete service.")
		return
	}

	h.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &userID,
		Action:     "service_deleted",
		Entity:     "service",
		EntityID:   &serviceID,
	})

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
