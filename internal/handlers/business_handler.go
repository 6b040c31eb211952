package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/appointly/appointment-scheduler/internal/httperr"
	"github.com/appointly/appointment-scheduler/internal/middleware"
	"github.com/appointly/appointment-scheduler/internal/models"
	"github.com/appointly/appointment-scheduler/internal/timezone"
)

type BusinessHandler struct {
	db *gorm.DB
}

func NewBusinessHandler(db *gorm.DB) *BusinessHandler {
	return &BusinessHandler{db: db}
}

type UpdateBusinessRequest struct {
	Name     *string `json:"name,omitempty"`
	Address  *string `json:"address,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty"`
	Website  *string `json:"website,omitempty"`
	Timezone *string `json:"timezone,omitempty"`
}

func (h *BusinessHandler) Get(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)

	var biz models.Business
	if err := h.db.First(&biz, "id = ?", businessID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "business_not_found", "Business not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_business", "Failed to load business.")
		return
	}

	c.JSON(http.StatusOK, biz)
}

func (h *BusinessHandler) Update(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)

	var biz models.Business
	if err := h.db.First(&biz, "id = ?", businessID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "business_not_found", "Business not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_business", "Failed to load business.")
		return
	}

	var req UpdateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request payload.")
		return
	}

	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Unknown IANA timezone.")
			return
		}
		biz.Timezone = *req.Timezone
	}
	if req.Name != nil {
		biz.Name = *req.Name
	}
	if req.Address != nil {
		biz.Address = *req.Address
	}
	if req.Phone != nil {
		biz.Phone = *req.Phone
	}
	if req.Email != nil {
		biz.Email = *req.Email
	}
	if req.Website != nil {
		biz.Website = *req.Website
	}

	if err := h.db.Save(&biz).Error; err != nil {
		httperr.Internal(c, "failed_to_update_business", "Failed to save business settings.")
		return
	}

	c.JSON(http.StatusOK, biz)
}
