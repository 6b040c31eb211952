package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/appointly/appointment-scheduler/internal/audit"
	domain "github.com/appointly/appointment-scheduler/internal/domain/appointment"
	"github.com/appointly/appointment-scheduler/internal/domain/reminder"
	"github.com/appointly/appointment-scheduler/internal/httperr"
	"github.com/appointly/appointment-scheduler/internal/models"
	"github.com/appointly/appointment-scheduler/internal/timezone"
)

type RescheduleAppointmentInput struct {
	BusinessID    uuid.UUID
	UserID        uuid.UUID
	AppointmentID uuid.UUID

	Date string
	Time string
}

type RescheduleAppointment struct {
	repo    domain.Repository
	audit   *audit.Dispatcher
	offsets []reminder.Offset
}

func NewRescheduleAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	offsets []reminder.Offset,
) *RescheduleAppointment {
	return &RescheduleAppointment{
		repo:    repo,
		audit:   audit,
		offsets: offsets,
	}
}

func (uc *RescheduleAppointment) Execute(
	ctx context.Context,
	in RescheduleAppointmentInput,
) (*models.Appointment, error) {

	biz, err := uc.repo.GetBusiness(ctx, in.BusinessID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(biz.Timezone)
	start, err := time.ParseInLocation("2006-01-02 15:04", in.Date+" "+in.Time, loc)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	now := timezone.NowIn(biz.Timezone)

	var updated *models.Appointment

	err = runBooking(ctx, uc.repo, func(tx domain.Repository) error {
		ap, err := tx.GetAppointment(ctx, in.BusinessID, in.AppointmentID)
		if err != nil {
			return httperr.ErrBusiness("appointment_not_found")
		}

		if err := domain.CanReschedule(domain.Status(ap.Status)); err != nil {
			return err
		}

		// Rescheduling keeps the service; an inactive one stays attached
		// to its historical booking.
		svc, err := tx.GetService(ctx, in.BusinessID, ap.ServiceID)
		if err != nil {
			return httperr.ErrBusiness("service_not_found")
		}
		duration := time.Duration(svc.DurationMin) * time.Minute

		// The appointment's own row must not count against the new slot.
		win, err := checkCandidate(ctx, tx, in.BusinessID, ap.StaffID, start, duration, &ap.ID)
		if err != nil {
			return err
		}

		if err := domain.Reschedule(ap, win); err != nil {
			return err
		}

		if err := tx.UpdateAppointment(ctx, ap); err != nil {
			return err
		}

		// Pending reminders chase the new start time.
		reminders := reminder.Plan(ap.ID, win.Start, now, uc.offsets)
		if err := tx.ReplacePendingReminders(ctx, ap.ID, reminders); err != nil {
			return err
		}

		updated = ap
		return nil
	})

	if err != nil {
		if httperr.IsExclusionConflict(err) {
			return nil, httperr.ErrBusiness("staff_unavailable")
		}
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: in.BusinessID,
		UserID:     &in.UserID,
		Action:     "appointment_rescheduled",
		Entity:     "appointment",
		EntityID:   &updated.ID,
		Metadata: map[string]any{
			"start": updated.StartTime,
			"end":   updated.EndTime,
		},
	})

	return updated, nil
}
