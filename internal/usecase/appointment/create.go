package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/appointly/appointment-scheduler/internal/audit"
	domain "github.com/appointly/appointment-scheduler/internal/domain/appointment"
	"github.com/appointly/appointment-scheduler/internal/domain/reminder"
	"github.com/appointly/appointment-scheduler/internal/httperr"
	"github.com/appointly/appointment-scheduler/internal/models"
	"github.com/appointly/appointment-scheduler/internal/timezone"
)

const (
	txTimeout   = 5 * time.Second
	maxRetries  = 3
	baseBackoff = 100 * time.Millisecond
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	BusinessID uuid.UUID
	UserID     uuid.UUID

	ClientID  uuid.UUID
	ServiceID uuid.UUID
	StaffID   *uuid.UUID

	Date  string // "2006-01-02" in the business timezone
	Time  string // "15:04"
	Notes string
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo    domain.Repository
	audit   *audit.Dispatcher
	offsets []reminder.Offset
}

func NewCreateAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	offsets []reminder.Offset,
) *CreateAppointment {
	return &CreateAppointment{
		repo:    repo,
		audit:   audit,
		offsets: offsets,
	}
}

// runBooking executes fn as a bounded serializable transaction, retrying
// serialization failures and timeouts with backoff. Everything else fails
// straight through to the caller.
func runBooking(
	ctx context.Context,
	repo domain.Repository,
	fn func(domain.Repository) error,
) error {
	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(baseBackoff))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		txCtx, cancel := context.WithTimeout(ctx, txTimeout)
		defer cancel()

		err := repo.InTx(txCtx, fn)
		if err != nil && httperr.IsRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
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

	svc, err := uc.repo.GetService(ctx, in.BusinessID, in.ServiceID)
	if err != nil {
		return nil, httperr.ErrBusiness("service_not_found")
	}
	if !svc.Active {
		return nil, httperr.ErrBusiness("service_inactive")
	}

	if _, err := uc.repo.GetClient(ctx, in.BusinessID, in.ClientID); err != nil {
		return nil, httperr.ErrBusiness("client_not_found")
	}

	if in.StaffID != nil {
		st, err := uc.repo.GetStaff(ctx, in.BusinessID, *in.StaffID)
		if err != nil {
			return nil, httperr.ErrBusiness("staff_not_found")
		}
		if !st.Active {
			return nil, httperr.ErrBusiness("staff_inactive")
		}
		if !staffPerforms(st, svc.ID) {
			return nil, httperr.ErrBusiness("staff_cannot_perform_service")
		}
	}

	duration := time.Duration(svc.DurationMin) * time.Minute
	now := timezone.NowIn(biz.Timezone)

	var created *models.Appointment

	err = runBooking(ctx, uc.repo, func(tx domain.Repository) error {
		win, err := checkCandidate(ctx, tx, in.BusinessID, in.StaffID, start, duration, nil)
		if err != nil {
			return err
		}

		ap := &models.Appointment{
			ID:         uuid.New(),
			BusinessID: in.BusinessID,
			ClientID:   in.ClientID,
			ServiceID:  in.ServiceID,
			StaffID:    in.StaffID,
			StartTime:  win.Start,
			EndTime:    win.End,
			Status:     string(domain.InitialStatus()),
			Notes:      in.Notes,
		}

		reminders := reminder.Plan(ap.ID, win.Start, now, uc.offsets)

		if err := tx.CreateAppointment(ctx, ap, reminders); err != nil {
			return err
		}

		created = ap
		return nil
	})

	if err != nil {
		if httperr.IsExclusionConflict(err) {
			// the storage backstop fired under a concurrent booking
			return nil, httperr.ErrBusiness("staff_unavailable")
		}
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: in.BusinessID,
		UserID:     &in.UserID,
		Action:     "appointment_created",
		Entity:     "appointment",
		EntityID:   &created.ID,
	})

	return created, nil
}

// checkCandidate gathers the schedule rows and blocking intervals for the
// candidate window and runs the availability check against them. Callers
// run it inside the booking transaction.
func checkCandidate(
	ctx context.Context,
	tx domain.Repository,
	businessID uuid.UUID,
	staffID *uuid.UUID,
	start time.Time,
	duration time.Duration,
	exclude *uuid.UUID,
) (domain.Interval, error) {

	hours, err := tx.BusinessWeek(ctx, businessID)
	if err != nil {
		return domain.Interval{}, err
	}

	input := domain.AvailabilityInput{
		Start:    start,
		Duration: duration,
		Hours:    hours,
	}

	if staffID != nil {
		staffWeek, err := tx.StaffWeek(ctx, *staffID)
		if err != nil {
			return domain.Interval{}, err
		}
		input.StaffSchedule = staffWeek

		booked, err := tx.ListBlockingIntervals(
			ctx,
			*staffID,
			domain.Interval{Start: start, End: start.Add(duration)},
			exclude,
		)
		if err != nil {
			return domain.Interval{}, err
		}
		input.Booked = booked
	}

	return domain.CheckAvailability(input)
}

func staffPerforms(st *models.Staff, serviceID uuid.UUID) bool {
	for _, svc := range st.Services {
		if svc.ID == serviceID {
			return true
		}
	}
	return false
}
