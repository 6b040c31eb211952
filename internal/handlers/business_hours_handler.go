package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/appointly/appointment-scheduler/internal/domain/schedule"
	"github.com/appointly/appointment-scheduler/internal/httperr"
	"github.com/appointly/appointment-scheduler/internal/middleware"
	"github.com/appointly/appointment-scheduler/internal/models"
)

type BusinessHoursHandler struct {
	db *gorm.DB
}

func NewBusinessHoursHandler(db *gorm.DB) *BusinessHoursHandler {
	return &BusinessHoursHandler{db: db}
}

type BusinessDayConfig struct {
	DayOfWeek int    `json:"day_of_week" binding:"min=0,max=6"`
	Closed    bool   `json:"closed"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
}

type BusinessHoursUpdateRequest struct {
	Days []BusinessDayConfig `json:"days" binding:"required"`
}

func (h *BusinessHoursHandler) Get(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)

	var hours []models.BusinessHours
	if err := h.db.
		Where("business_id = ?", businessID).
		Order("day_of_week ASC").
		Find(&hours).Error; err != nil {

		httperr.Internal(c, "failed_to_get_business_hours", "Failed to load business hours.")
		return
	}

	c.JSON(http.StatusOK, hours)
}

// Update replaces the whole week. Open days are validated through the
// time-window rules before anything is written.
func (h *BusinessHoursHandler) Update(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)

	var req BusinessHoursUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request payload.")
		return
	}

	seen := map[int]bool{}
	week := schedule.Week{}
	for _, d := range req.Days {
		if seen[d.DayOfWeek] {
			httperr.BadRequest(c, "duplicate_day_of_week", "Each day may appear only once.")
			return
		}
		seen[d.DayOfWeek] = true

		if d.Closed {
			continue
		}
		week[time.Weekday(d.DayOfWeek)] = schedule.TimeWindow{
			Open:  d.OpenTime,
			Close: d.CloseTime,
		}
	}

	if err := week.Validate(); err != nil {
		respondError(c, err, "invalid_business_hours", "Invalid business hours.")
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("business_id = ?", businessID).
			Delete(&models.BusinessHours{}).Error; err != nil {
			return err
		}

		var toCreate []models.BusinessHours
		for _, d := range req.Days {
			toCreate = append(toCreate, models.BusinessHours{
				BusinessID: businessID,
				DayOfWeek:  d.DayOfWeek,
				OpenTime:   d.OpenTime,
				CloseTime:  d.CloseTime,
				Closed:     d.Closed,
			})
		}
		if len(toCreate) > 0 {
			return tx.Create(&toCreate).Error
		}
		return nil
	})
	if err != nil {
		httperr.Internal(c, "failed_to_save_business_hours", "Failed to save business hours.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
