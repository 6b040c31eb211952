package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/appointly/appointment-scheduler/internal/audit"
	domain "github.com/appointly/appointment-scheduler/internal/domain/appointment"
	"github.com/appointly/appointment-scheduler/internal/domain/schedule"
	"github.com/appointly/appointment-scheduler/internal/httperr"
	"github.com/appointly/appointment-scheduler/internal/httpresp"
	"github.com/appointly/appointment-scheduler/internal/middleware"
	"github.com/appointly/appointment-scheduler/internal/models"
)

type StaffHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewStaffHandler(db *gorm.DB, auditor *audit.Dispatcher) *StaffHandler {
	return &StaffHandler{db: db, audit: auditor}
}

type CreateStaffRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type UpdateStaffRequest struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

type StaffDayConfig struct {
	DayOfWeek int    `json:"day_of_week" binding:"min=0,max=6"`
	Working   bool   `json:"working"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type StaffScheduleUpdateRequest struct {
	Days []StaffDayConfig `json:"days" binding:"required"`
}

type StaffServicesUpdateRequest struct {
	ServiceIDs []uuid.UUID `json:"service_ids" binding:"required"`
}

func (h *StaffHandler) find(c *gin.Context, businessID uuid.UUID) (*models.Staff, bool) {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid staff id.")
		return nil, false
	}

	var staff models.Staff
	err = h.db.
		Where("id = ? AND business_id = ?", staffID, businessID).
		First(&staff).Error
	if err != nil {
		respondError(c, err, "staff_not_found", "Staff member not found.")
		return nil, false
	}
	return &staff, true
}

func (h *StaffHandler) Create(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request payload.")
		return
	}

	staff := models.Staff{
		ID:         uuid.New(),
		BusinessID: businessID,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Active:     true,
	}

	if err := h.db.Create(&staff).Error; err != nil {
		httperr.Internal(c, "failed_to_create_staff", "Failed to create staff member.")
		return
	}

	h.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &userID,
		Action:     "staff_created",
		Entity:     "staff",
		EntityID:   &staff.ID,
	})

	httpresp.Created(c, staff)
}

func (h *StaffHandler) List(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)

	query := h.db.Where("business_id = ?", businessID).Preload("Services")

	switch c.Query("active") {
	case "true":
		query = query.Where("active = ?", true)
	case "false":
		query = query.Where("active = ?", false)
	}

	var staff []models.Staff
	if err := query.Order("name ASC").Find(&staff).Error; err != nil {
		httperr.Internal(c, "failed_to_list_staff", "Failed to list staff.")
		return
	}

	httpresp.List(c, staff)
}

func (h *StaffHandler) Get(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)

	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid staff id.")
		return
	}

	var staff models.Staff
	err = h.db.
		Where("id = ? AND business_id = ?", staffID, businessID).
		Preload("Services").
		First(&staff).Error
	if err != nil {
		respondError(c, err, "staff_not_found", "Staff member not found.")
		return
	}

	c.JSON(http.StatusOK, staff)
}

// futureCommitments counts non-terminal appointments from now onwards for
// the staff member. Deactivation and deletion both check it.
func (h *StaffHandler) futureCommitments(staffID uuid.UUID) (int64, error) {
	var count int64
	err := h.db.Model(&models.Appointment{}).
		Where("staff_id = ?", staffID).
		Where("start_time >= ?", time.Now().UTC()).
		Where("status IN ?", []string{
			string(domain.StatusScheduled),
			string(domain.StatusConfirmed),
		}).
		Count(&count).Error
	return count, err
}

func (h *StaffHandler) Update(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	staff, ok := h.find(c, businessID)
	if !ok {
		return
	}

	var req UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request payload.")
		return
	}

	if req.Active != nil && !*req.Active && staff.Active {
		count, err := h.futureCommitments(staff.ID)
		if err != nil {
			httperr.Internal(c, "failed_to_update_staff", "Failed to update staff member.")
			return
		}
		if count > 0 {
			httperr.Conflict(c, "staff_has_future_appointments",
				conflictCodes["staff_has_future_appointments"])
			return
		}
	}

	if req.Name != nil {
		staff.Name = *req.Name
	}
	if req.Email != nil {
		staff.Email = *req.Email
	}
	if req.Phone != nil {
		staff.Phone = *req.Phone
	}
	if req.Active != nil {
		staff.Active = *req.Active
	}

	if err := h.db.Save(staff).Error; err != nil {
		httperr.Internal(c, "failed_to_update_staff", "Failed to update staff member.")
		return
	}

	h.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &userID,
		Action:     "staff_updated",
		Entity:     "staff",
		EntityID:   &staff.ID,
	})

	c.JSON(http.StatusOK, staff)
}

// Delete removes the staff member. Upcoming bookings block it the same way
// deactivation is blocked; past appointments keep their history with
// staff_id set to null by the foreign key.
func (h *StaffHandler) Delete(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	staff, ok := h.find(c, businessID)
	if !ok {
		return
	}

	count, err := h.futureCommitments(staff.ID)
	if err != nil {
		httperr.Internal(c, "failed_to_delete_staff", "Failed to delete staff member.")
		return
	}
	if count > 0 {
		httperr.Conflict(c, "staff_has_future_appointments",
			conflictCodes["staff_has_future_appointments"])
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(staff).Association("Services").Clear(); err != nil {
			return err
		}
		if err := tx.Where("staff_id = ?", staff.ID).
			Delete(&models.StaffSchedule{}).Error; err != nil {
			return err
		}
		return tx.Delete(staff).Error
	})
	if err != nil {
		httperr.Internal(c, "failed_to_delete_staff", "Failed to delete staff member.")
		return
	}

	h.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &userID,
		Action:     "staff_deleted",
		Entity:     "staff",
		EntityID:   &staff.ID,
	})

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *StaffHandler) GetSchedule(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)

	staff, ok := h.find(c, businessID)
	if !ok {
		return
	}

	var rows []models.StaffSchedule
	if err := h.db.
		Where("staff_id = ?", staff.ID).
		Order("day_of_week ASC").
		Find(&rows).Error; err != nil {

		httperr.Internal(c, "failed_to_get_schedule", "Failed to load staff schedule.")
		return
	}

	c.JSON(http.StatusOK, rows)
}

// UpdateSchedule replaces the staff member's whole week, mirroring the
// business-hours update.
func (h *StaffHandler) UpdateSchedule(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	staff, ok := h.find(c, businessID)
	if !ok {
		return
	}

	var req StaffScheduleUpdateRequest
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

		if !d.Working {
			continue
		}
		week[time.Weekday(d.DayOfWeek)] = schedule.TimeWindow{
			Open:  d.StartTime,
			Close: d.EndTime,
		}
	}

	if err := week.Validate(); err != nil {
		respondError(c, err, "invalid_staff_schedule", "Invalid staff schedule.")
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("staff_id = ?", staff.ID).
			Delete(&models.StaffSchedule{}).Error; err != nil {
			return err
		}

		var toCreate []models.StaffSchedule
		for _, d := range req.Days {
			toCreate = append(toCreate, models.StaffSchedule{
				StaffID:   staff.ID,
				DayOfWeek: d.DayOfWeek,
				StartTime: d.StartTime,
				EndTime:   d.EndTime,
				Working:   d.Working,
			})
		}
		if len(toCreate) > 0 {
			return tx.Create(&toCreate).Error
		}
		return nil
	})
	if err != nil {
		httperr.Internal(c, "failed_to_save_schedule", "Failed to save staff schedule.")
		return
	}

	h.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &userID,
		Action:     "staff_schedule_updated",
		Entity:     "staff",
		EntityID:   &staff.ID,
	})

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// UpdateServices replaces the set of services the staff member performs.
// Every id must belong to this business.
func (h *StaffHandler) UpdateServices(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	staff, ok := h.find(c, businessID)
	if !ok {
		return
	}

	var req StaffServicesUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request payload.")
		return
	}

	var services []models.Service
	if len(req.ServiceIDs) > 0 {
		err := h.db.
			Where("business_id = ? AND id IN ?", businessID, req.ServiceIDs).
			Find(&services).Error
		if err != nil {
			httperr.Internal(c, "failed_to_update_services", "Failed to update staff services.")
			return
		}
		if len(services) != len(req.ServiceIDs) {
			httperr.NotFound(c, "service_not_found", "One or more services were not found.")
			return
		}
	}

	if err := h.db.Model(staff).Association("Services").Replace(services); err != nil {
		httperr.Internal(c, "failed_to_update_services", "Failed to update staff services.")
		return
	}

	h.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &userID,
		Action:     "staff_services_updated",
		Entity:     "staff",
		EntityID:   &staff.ID,
		Metadata:   gin.H{"service_ids": req.ServiceIDs},
	})

	staff.Services = services
	c.JSON(http.StatusOK, staff)
}
