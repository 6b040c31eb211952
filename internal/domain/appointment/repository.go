package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/appointly/appointment-scheduler/internal/domain/schedule"
	"github.com/appointly/appointment-scheduler/internal/models"
)

type Repository interface {
	// -------- Tenant-scoped lookups --------
	GetBusiness(
		ctx context.Context,
		id uuid.UUID,
	) (*models.Business, error)

	GetService(
		ctx context.Context,
		businessID uuid.UUID,
		serviceID uuid.UUID,
	) (*models.Service, error)

	GetStaff(
		ctx context.Context,
		businessID uuid.UUID,
		staffID uuid.UUID,
	) (*models.Staff, error)

	GetClient(
		ctx context.Context,
		businessID uuid.UUID,
		clientID uuid.UUID,
	) (*models.Client, error)

	GetAppointment(
		ctx context.Context,
		businessID uuid.UUID,
		appointmentID uuid.UUID,
	) (*models.Appointment, error)

	// -------- Schedules --------
	BusinessWeek(
		ctx context.Context,
		businessID uuid.UUID,
	) (schedule.Week, error)

	StaffWeek(
		ctx context.Context,
		staffID uuid.UUID,
	) (schedule.Week, error)

	// -------- Conflict window --------

	// ListBlockingIntervals returns slot-blocking appointment windows for
	// the staff member inside the given range, row-locked so a concurrent
	// booking in the same range serializes behind this transaction.
	// exclude drops one appointment's own row (reschedule path).
	ListBlockingIntervals(
		ctx context.Context,
		staffID uuid.UUID,
		within Interval,
		exclude *uuid.UUID,
	) ([]Interval, error)

	// -------- Writes --------
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
		reminders []models.AppointmentReminder,
	) error

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Reminders --------
	ListReminders(
		ctx context.Context,
		appointmentID uuid.UUID,
	) ([]models.AppointmentReminder, error)

	FailPendingReminders(
		ctx context.Context,
		appointmentID uuid.UUID,
	) error

	ReplacePendingReminders(
		ctx context.Context,
		appointmentID uuid.UUID,
		reminders []models.AppointmentReminder,
	) error

	// InTx runs fn against a serializable transaction so an availability
	// check and the write it guards commit atomically.
	InTx(
		ctx context.Context,
		fn func(Repository) error,
	) error
}
