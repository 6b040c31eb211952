package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	usecase "github.com/appointly/appointment-scheduler/internal/usecase/appointment"

	domain "github.com/appointly/appointment-scheduler/internal/domain/appointment"
	"github.com/appointly/appointment-scheduler/internal/httperr"
	"github.com/appointly/appointment-scheduler/internal/httpresp"
	"github.com/appointly/appointment-scheduler/internal/middleware"
	"github.com/appointly/appointment-scheduler/internal/models"
)

type AppointmentHandler struct {
	db   *gorm.DB
	repo domain.Repository

	create       *usecase.CreateAppointment
	updateStatus *usecase.UpdateAppointmentStatus
	reschedule   *usecase.RescheduleAppointment
}

func NewAppointmentHandler(
	db *gorm.DB,
	repo domain.Repository,
	create *usecase.CreateAppointment,
	updateStatus *usecase.UpdateAppointmentStatus,
	reschedule *usecase.RescheduleAppointment,
) *AppointmentHandler {
	return &AppointmentHandler{
		db:           db,
		repo:         repo,
		create:       create,
		updateStatus: updateStatus,
		reschedule:   reschedule,
	}
}

type CreateAppointmentRequest struct {
	ClientID  uuid.UUID  `json:"client_id" binding:"required"`
	ServiceID uuid.UUID  `json:"service_id" binding:"required"`
	StaffID   *uuid.UUID `json:"staff_id"`

	Date  string `json:"date" binding:"required"` // "2006-01-02"
	Time  string `json:"time" binding:"required"` // "15:04"
	Notes string `json:"notes"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type RescheduleAppointmentRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request payload.")
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), usecase.CreateAppointmentInput{
		BusinessID: businessID,
		UserID:     userID,
		ClientID:   req.ClientID,
		ServiceID:  req.ServiceID,
		StaffID:    req.StaffID,
		Date:       req.Date,
		Time:       req.Time,
		Notes:      req.Notes,
	})
	if err != nil {
		respondError(c, err, "failed_to_create_appointment", "Failed to create appointment.")
		return
	}

	httpresp.Created(c, ap)
}

// List filters by day, staff, client and status. The day filter is
// interpreted in the business timezone.
func (h *AppointmentHandler) List(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)

	query := h.db.
		Where("business_id = ?", businessID).
		Preload("Client").
		Preload("Service").
		Preload("Staff")

	if dateStr := c.Query("date"); dateStr != "" {
		var biz models.Business
		if err := h.db.First(&biz, "id = ?", businessID).Error; err != nil {
			respondError(c, err, "business_not_found", "Business not found.")
			return
		}

		day, err := parseDateInBusiness(&biz, dateStr)
		if err != nil {
			httperr.BadRequest(c, "invalid_date_or_time", "Date must be YYYY-MM-DD.")
			return
		}
		query = query.Where(
			"start_time >= ? AND start_time < ?",
			day, day.AddDate(0, 0, 1),
		)
	}

	if staffStr := c.Query("staff_id"); staffStr != "" {
		staffID, err := uuid.Parse(staffStr)
		if err != nil {
			httperr.BadRequest(c, "invalid_id", "Invalid staff id.")
			return
		}
		query = query.Where("staff_id = ?", staffID)
	}

	if clientStr := c.Query("client_id"); clientStr != "" {
		clientID, err := uuid.Parse(clientStr)
		if err != nil {
			httperr.BadRequest(c, "invalid_id", "Invalid client id.")
			return
		}
		query = query.Where("client_id = ?", clientID)
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []models.Appointment
	if err := query.Order("start_time ASC").Find(&appointments).Error; err != nil {
		httperr.Internal(c, "failed_to_list_appointments", "Failed to list appointments.")
		return
	}

	httpresp.List(c, appointments)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return
	}

	var ap models.Appointment
	err = h.db.
		Where("id = ? AND business_id = ?", appointmentID, businessID).
		Preload("Client").
		Preload("Service").
		Preload("Staff").
		First(&ap).Error
	if err != nil {
		respondError(c, err, "appointment_not_found", "Appointment not found.")
		return
	}

	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return
	}

	var req UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request payload.")
		return
	}

	ap, err := h.updateStatus.Execute(
		c.Request.Context(),
		businessID, userID, appointmentID, req.Status,
	)
	if err != nil {
		respondError(c, err, "failed_to_update_status", "Failed to update appointment status.")
		return
	}

	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return
	}

	var req RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request payload.")
		return
	}

	ap, err := h.reschedule.Execute(c.Request.Context(), usecase.RescheduleAppointmentInput{
		BusinessID:    businessID,
		UserID:        userID,
		AppointmentID: appointmentID,
		Date:          req.Date,
		Time:          req.Time,
	})
	if err != nil {
		respondError(c, err, "failed_to_reschedule", "Failed to reschedule appointment.")
		return
	}

	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) Reminders(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.repo.GetAppointment(ctx, businessID, appointmentID); err != nil {
		respondError(c, err, "appointment_not_found", "Appointment not found.")
		return
	}

	reminders, err := h.repo.ListReminders(ctx, appointmentID)
	if err != nil {
		httperr.Internal(c, "failed_to_list_reminders", "Failed to list reminders.")
		return
	}

	httpresp.List(c, reminders)
}
