package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	usecase "github.com/appointly/appointment-scheduler/internal/usecase/appointment"

	"github.com/appointly/appointment-scheduler/internal/httperr"
	"github.com/appointly/appointment-scheduler/internal/middleware"
	"github.com/appointly/appointment-scheduler/internal/models"
)

type AvailabilityHandler struct {
	db           *gorm.DB
	availability *usecase.GetAvailability
}

func NewAvailabilityHandler(db *gorm.DB, availability *usecase.GetAvailability) *AvailabilityHandler {
	return &AvailabilityHandler{db: db, availability: availability}
}

type AvailabilityResponse struct {
	Date    string             `json:"date"`
	StaffID uuid.UUID          `json:"staff_id"`
	Slots   []usecase.TimeSlot `json:"slots"`
}

// Get lists the bookable slots for one staff member, service and day.
// Query params: staff_id, service_id, date (YYYY-MM-DD, business timezone).
func (h *AvailabilityHandler) Get(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)

	staffID, err := uuid.Parse(c.Query("staff_id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "staff_id is required and must be a uuid.")
		return
	}
	serviceID, err := uuid.Parse(c.Query("service_id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "service_id is required and must be a uuid.")
		return
	}

	var biz models.Business
	if err := h.db.First(&biz, "id = ?", businessID).Error; err != nil {
		respondError(c, err, "business_not_found", "Business not found.")
		return
	}

	day, err := parseDateInBusiness(&biz, c.Query("date"))
	if err != nil {
		httperr.BadRequest(c, "invalid_date_or_time", "date is required and must be YYYY-MM-DD.")
		return
	}

	var staff models.Staff
	err = h.db.
		Where("id = ? AND business_id = ?", staffID, businessID).
		First(&staff).Error
	if err != nil {
		respondError(c, err, "staff_not_found", "Staff member not found.")
		return
	}
	if !staff.Active {
		httperr.Conflict(c, "staff_inactive", conflictCodes["staff_inactive"])
		return
	}

	slots, err := h.availability.Execute(c.Request.Context(), usecase.AvailabilityQuery{
		BusinessID: businessID,
		StaffID:    staffID,
		ServiceID:  serviceID,
		Date:       day,
	})
	if err != nil {
		respondError(c, err, "failed_to_get_availability", "Failed to compute availability.")
		return
	}

	c.JSON(http.StatusOK, AvailabilityResponse{
		Date:    day.Format("2006-01-02"),
		StaffID: staffID,
		Slots:   slots,
	})
}
