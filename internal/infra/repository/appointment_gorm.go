package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/appointly/appointment-scheduler/internal/domain/appointment"
	"github.com/appointly/appointment-scheduler/internal/domain/schedule"
	"github.com/appointly/appointment-scheduler/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Tenant-scoped lookups
// --------------------------------------------------

func (r *AppointmentGormRepository) GetBusiness(
	ctx context.Context,
	id uuid.UUID,
) (*models.Business, error) {

	var biz models.Business
	if err := r.db.WithContext(ctx).First(&biz, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &biz, nil
}

func (r *AppointmentGormRepository) GetService(
	ctx context.Context,
	businessID uuid.UUID,
	serviceID uuid.UUID,
) (*models.Service, error) {

	var svc models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", serviceID, businessID).
		First(&svc).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *AppointmentGormRepository) GetStaff(
	ctx context.Context,
	businessID uuid.UUID,
	staffID uuid.UUID,
) (*models.Staff, error) {

	var st models.Staff
	if err := r.db.WithContext(ctx).
		Preload("Services").
		Where("id = ? AND business_id = ?", staffID, businessID).
		First(&st).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *AppointmentGormRepository) GetClient(
	ctx context.Context,
	businessID uuid.UUID,
	clientID uuid.UUID,
) (*models.Client, error) {

	var cl models.Client
	if err := r.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", clientID, businessID).
		First(&cl).Error; err != nil {
		return nil, err
	}
	return &cl, nil
}

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	businessID uuid.UUID,
	appointmentID uuid.UUID,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", appointmentID, businessID).
		First(&ap).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

// --------------------------------------------------
// Schedules
// --------------------------------------------------

func (r *AppointmentGormRepository) BusinessWeek(
	ctx context.Context,
	businessID uuid.UUID,
) (schedule.Week, error) {

	var rows []models.BusinessHours
	if err := r.db.WithContext(ctx).
		Where("business_id = ? AND closed = false", businessID).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	week := schedule.Week{}
	for _, row := range rows {
		week[time.Weekday(row.DayOfWeek)] = schedule.TimeWindow{
			Open:  row.OpenTime,
			Close: row.CloseTime,
		}
	}
	return week, nil
}

func (r *AppointmentGormRepository) StaffWeek(
	ctx context.Context,
	staffID uuid.UUID,
) (schedule.Week, error) {

	var rows []models.StaffSchedule
	if err := r.db.WithContext(ctx).
		Where("staff_id = ? AND working = true", staffID).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	week := schedule.Week{}
	for _, row := range rows {
		week[time.Weekday(row.DayOfWeek)] = schedule.TimeWindow{
			Open:  row.StartTime,
			Close: row.EndTime,
		}
	}
	return week, nil
}

// --------------------------------------------------
// Conflict window
// --------------------------------------------------

func (r *AppointmentGormRepository) ListBlockingIntervals(
	ctx context.Context,
	staffID uuid.UUID,
	within domain.Interval,
	exclude *uuid.UUID,
) ([]domain.Interval, error) {

	q := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(
			"staff_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			staffID,
			[]string{
				string(domain.StatusScheduled),
				string(domain.StatusConfirmed),
				string(domain.StatusCompleted),
			},
			within.End,
			within.Start,
		)

	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}

	var aps []models.Appointment
	if err := q.
		Select("start_time", "end_time").
		Order("start_time ASC").
		Find(&aps).Error; err != nil {
		return nil, err
	}

	intervals := make([]domain.Interval, 0, len(aps))
	for _, ap := range aps {
		intervals = append(intervals, domain.Interval{
			Start: ap.StartTime,
			End:   ap.EndTime,
		})
	}
	return intervals, nil
}

// --------------------------------------------------
// Writes
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
	reminders []models.AppointmentReminder,
) error {

	if err := r.db.WithContext(ctx).Create(ap).Error; err != nil {
		return err
	}
	if len(reminders) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&reminders).Error
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Save(ap).Error
}

// --------------------------------------------------
// Reminders
// --------------------------------------------------

func (r *AppointmentGormRepository) ListReminders(
	ctx context.Context,
	appointmentID uuid.UUID,
) ([]models.AppointmentReminder, error) {

	var rs []models.AppointmentReminder
	if err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("scheduled_time ASC").
		Find(&rs).Error; err != nil {
		return nil, err
	}
	return rs, nil
}

func (r *AppointmentGormRepository) FailPendingReminders(
	ctx context.Context,
	appointmentID uuid.UUID,
) error {
	return r.db.WithContext(ctx).
		Model(&models.AppointmentReminder{}).
		Where("appointment_id = ? AND status = ?", appointmentID, models.ReminderStatusPending).
		Update("status", models.ReminderStatusFailed).Error
}

func (r *AppointmentGormRepository) ReplacePendingReminders(
	ctx context.Context,
	appointmentID uuid.UUID,
	reminders []models.AppointmentReminder,
) error {

	if err := r.db.WithContext(ctx).
		Where("appointment_id = ? AND status = ?", appointmentID, models.ReminderStatusPending).
		Delete(&models.AppointmentReminder{}).Error; err != nil {
		return err
	}
	if len(reminders) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&reminders).Error
}

// --------------------------------------------------
// Transactions
// --------------------------------------------------

// InTx runs fn in a serializable transaction. Concurrent bookings for the
// same staff window either serialize behind the row locks or fail with a
// serialization error, which the use case retries.
func (r *AppointmentGormRepository) InTx(
	ctx context.Context,
	fn func(domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AppointmentGormRepository{db: tx})
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
