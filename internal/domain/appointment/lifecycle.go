package appointment

import (
	"time"

	"github.com/appointly/appointment-scheduler/internal/httperr"
	"github.com/appointly/appointment-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Transition moves an appointment to the requested status, stamping
// cancelled_at/completed_at where the state calls for it.
func Transition(ap *models.Appointment, to Status, now time.Time) error {
	if err := CanTransition(Status(ap.Status), to); err != nil {
		return err
	}

	ap.Status = string(to)
	switch to {
	case StatusCancelled:
		ap.CancelledAt = &now
	case StatusCompleted:
		ap.CompletedAt = &now
	}
	return nil
}

// CanReschedule allows a time change only while the appointment is still
// live (scheduled or confirmed).
func CanReschedule(current Status) error {
	if current.Terminal() {
		return httperr.ErrBusinessf(
			"cannot_reschedule_terminal",
			"appointment is %s", current,
		)
	}
	return nil
}

// Reschedule moves the appointment to an already-approved window. Callers
// must have run the availability check (excluding this appointment's own
// row) within the same transaction.
func Reschedule(ap *models.Appointment, approved Interval) error {
	if err := CanReschedule(Status(ap.Status)); err != nil {
		return err
	}
	ap.StartTime = approved.Start
	ap.EndTime = approved.End
	return nil
}
