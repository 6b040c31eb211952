package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/appointly/appointment-scheduler/internal/audit"
	domain "github.com/appointly/appointment-scheduler/internal/domain/appointment"
	"github.com/appointly/appointment-scheduler/internal/httperr"
	"github.com/appointly/appointment-scheduler/internal/models"
	"github.com/appointly/appointment-scheduler/internal/timezone"
)

type UpdateAppointmentStatus struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewUpdateAppointmentStatus(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *UpdateAppointmentStatus {
	return &UpdateAppointmentStatus{
		repo:  repo,
		audit: audit,
	}
}

func (uc *UpdateAppointmentStatus) Execute(
	ctx context.Context,
	businessID uuid.UUID,
	userID uuid.UUID,
	appointmentID uuid.UUID,
	requested string,
) (*models.Appointment, error) {

	target, err := domain.ParseStatus(requested)
	if err != nil {
		return nil, err
	}

	biz, err := uc.repo.GetBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	now := timezone.NowIn(biz.Timezone)

	var updated *models.Appointment

	err = runBooking(ctx, uc.repo, func(tx domain.Repository) error {
		ap, err := tx.GetAppointment(ctx, businessID, appointmentID)
		if err != nil {
			return httperr.ErrBusiness("appointment_not_found")
		}

		if err := domain.Transition(ap, target, now); err != nil {
			return err
		}

		if err := tx.UpdateAppointment(ctx, ap); err != nil {
			return err
		}

		// Cancelling must also pull the plug on anything still queued for
		// delivery; the two writes commit together.
		if target == domain.StatusCancelled {
			if err := tx.FailPendingReminders(ctx, ap.ID); err != nil {
				return err
			}
		}

		updated = ap
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &userID,
		Action:     "appointment_status_changed",
		Entity:     "appointment",
		EntityID:   &updated.ID,
		Metadata:   map[string]any{"status": updated.Status},
	})

	return updated, nil
}
