package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/appointly/appointment-scheduler/internal/httperr"
	"github.com/appointly/appointment-scheduler/internal/middleware"
	"github.com/appointly/appointment-scheduler/internal/models"
)

type AuditLogsHandler struct {
	db *gorm.DB
}

func NewAuditLogsHandler(db *gorm.DB) *AuditLogsHandler {
	return &AuditLogsHandler{db: db}
}

type auditLogsPage struct {
	Data   []models.AuditLog `json:"data"`
	Total  int64             `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// List returns the business's audit trail, newest first, with optional
// action/entity filters and limit/offset paging.
func (h *AuditLogsHandler) List(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	query := h.db.Model(&models.AuditLog{}).Where("business_id = ?", businessID)

	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if entity := c.Query("entity"); entity != "" {
		query = query.Where("entity = ?", entity)
	}
	if entityStr := c.Query("entity_id"); entityStr != "" {
		entityID, err := uuid.Parse(entityStr)
		if err != nil {
			httperr.BadRequest(c, "invalid_id", "Invalid entity id.")
			return
		}
		query = query.Where("entity_id = ?", entityID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		httperr.Internal(c, "failed_to_list_audit_logs", "Failed to list audit logs.")
		return
	}

	var logs []models.AuditLog
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error; err != nil {

		httperr.Internal(c, "failed_to_list_audit_logs", "Failed to list audit logs.")
		return
	}

	c.JSON(http.StatusOK, auditLogsPage{
		Data:   logs,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}
