package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appointly/appointment-scheduler/internal/audit"
	domain "github.com/appointly/appointment-scheduler/internal/domain/appointment"
	"github.com/appointly/appointment-scheduler/internal/domain/reminder"
	"github.com/appointly/appointment-scheduler/internal/domain/schedule"
	"github.com/appointly/appointment-scheduler/internal/httperr"
	"github.com/appointly/appointment-scheduler/internal/models"
)

// fakeRepo is an in-memory Repository. InTx snapshots state and restores
// it when fn fails, mirroring the all-or-nothing transaction semantics.
type fakeRepo struct {
	business *models.Business
	services map[uuid.UUID]*models.Service
	staff    map[uuid.UUID]*models.Staff
	clients  map[uuid.UUID]*models.Client

	hours      schedule.Week
	staffWeeks map[uuid.UUID]schedule.Week

	appointments map[uuid.UUID]*models.Appointment
	reminders    []models.AppointmentReminder
}

func (f *fakeRepo) GetBusiness(_ context.Context, id uuid.UUID) (*models.Business, error) {
	if f.business == nil || f.business.ID != id {
		return nil, httperr.ErrBusiness("not_found")
	}
	return f.business, nil
}

func (f *fakeRepo) GetService(_ context.Context, businessID, serviceID uuid.UUID) (*models.Service, error) {
	svc, ok := f.services[serviceID]
	if !ok || svc.BusinessID != businessID {
		return nil, httperr.ErrBusiness("not_found")
	}
	return svc, nil
}

func (f *fakeRepo) GetStaff(_ context.Context, businessID, staffID uuid.UUID) (*models.Staff, error) {
	st, ok := f.staff[staffID]
	if !ok || st.BusinessID != businessID {
		return nil, httperr.ErrBusiness("not_found")
	}
	return st, nil
}

func (f *fakeRepo) GetClient(_ context.Context, businessID, clientID uuid.UUID) (*models.Client, error) {
	cl, ok := f.clients[clientID]
	if !ok || cl.BusinessID != businessID {
		return nil, httperr.ErrBusiness("not_found")
	}
	return cl, nil
}

func (f *fakeRepo) GetAppointment(_ context.Context, businessID, appointmentID uuid.UUID) (*models.Appointment, error) {
	ap, ok := f.appointments[appointmentID]
	if !ok || ap.BusinessID != businessID {
		return nil, httperr.ErrBusiness("not_found")
	}
	cp := *ap
	return &cp, nil
}

func (f *fakeRepo) BusinessWeek(_ context.Context, _ uuid.UUID) (schedule.Week, error) {
	return f.hours, nil
}

func (f *fakeRepo) StaffWeek(_ context.Context, staffID uuid.UUID) (schedule.Week, error) {
	return f.staffWeeks[staffID], nil
}

func (f *fakeRepo) ListBlockingIntervals(
	_ context.Context,
	staffID uuid.UUID,
	within domain.Interval,
	exclude *uuid.UUID,
) ([]domain.Interval, error) {

	var out []domain.Interval
	for _, ap := range f.appointments {
		if ap.StaffID == nil || *ap.StaffID != staffID {
			continue
		}
		if exclude != nil && ap.ID == *exclude {
			continue
		}
		if !domain.Status(ap.Status).BlocksSlot() {
			continue
		}
		iv := domain.Interval{Start: ap.StartTime, End: ap.EndTime}
		if iv.Overlaps(within) {
			out = append(out, iv)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateAppointment(_ context.Context, ap *models.Appointment, reminders []models.AppointmentReminder) error {
	cp := *ap
	f.appointments[ap.ID] = &cp
	f.reminders = append(f.reminders, reminders...)
	return nil
}

func (f *fakeRepo) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	cp := *ap
	f.appointments[ap.ID] = &cp
	return nil
}

func (f *fakeRepo) ListReminders(_ context.Context, appointmentID uuid.UUID) ([]models.AppointmentReminder, error) {
	var out []models.AppointmentReminder
	for _, r := range f.reminders {
		if r.AppointmentID == appointmentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) FailPendingReminders(_ context.Context, appointmentID uuid.UUID) error {
	for i := range f.reminders {
		r := &f.reminders[i]
		if r.AppointmentID == appointmentID && r.Status == models.ReminderStatusPending {
			r.Status = models.ReminderStatusFailed
		}
	}
	return nil
}

func (f *fakeRepo) ReplacePendingReminders(_ context.Context, appointmentID uuid.UUID, reminders []models.AppointmentReminder) error {
	kept := f.reminders[:0]
	for _, r := range f.reminders {
		if r.AppointmentID == appointmentID && r.Status == models.ReminderStatusPending {
			continue
		}
		kept = append(kept, r)
	}
	f.reminders = append(kept, reminders...)
	return nil
}

func (f *fakeRepo) InTx(_ context.Context, fn func(domain.Repository) error) error {
	apsBackup := make(map[uuid.UUID]*models.Appointment, len(f.appointments))
	for id, ap := range f.appointments {
		cp := *ap
		apsBackup[id] = &cp
	}
	remBackup := make([]models.AppointmentReminder, len(f.reminders))
	copy(remBackup, f.reminders)

	if err := fn(f); err != nil {
		f.appointments = apsBackup
		f.reminders = remBackup
		return err
	}
	return nil
}

var _ domain.Repository = (*fakeRepo)(nil)

// ------------------------------------------------------
// Fixtures
// ------------------------------------------------------

type fixture struct {
	repo    *fakeRepo
	biz     *models.Business
	service *models.Service
	staff   *models.Staff
	client  *models.Client
	offsets []reminder.Offset
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	biz := &models.Business{ID: uuid.New(), Name: "Glow Studio", Timezone: "UTC"}
	svc := &models.Service{
		ID: uuid.New(), BusinessID: biz.ID,
		Name: "Consultation", DurationMin: 30, Price: 40, Active: true,
	}
	st := &models.Staff{
		ID: uuid.New(), BusinessID: biz.ID,
		Name: "Dana", Active: true,
		Services: []models.Service{*svc},
	}
	cl := &models.Client{ID: uuid.New(), BusinessID: biz.ID, FirstName: "Ira"}

	// open all week 09:00-17:00 so tests can pick any future date
	week := schedule.Week{}
	for d := time.Sunday; d <= time.Saturday; d++ {
		week[d] = schedule.TimeWindow{Open: "09:00", Close: "17:00"}
	}

	repo := &fakeRepo{
		business:     biz,
		services:     map[uuid.UUID]*models.Service{svc.ID: svc},
		staff:        map[uuid.UUID]*models.Staff{st.ID: st},
		clients:      map[uuid.UUID]*models.Client{cl.ID: cl},
		hours:        week,
		staffWeeks:   map[uuid.UUID]schedule.Week{st.ID: week},
		appointments: map[uuid.UUID]*models.Appointment{},
	}

	return &fixture{
		repo:    repo,
		biz:     biz,
		service: svc,
		staff:   st,
		client:  cl,
		offsets: reminder.DefaultOffsets([]time.Duration{24 * time.Hour, time.Hour}),
	}
}

func (fx *fixture) dispatcher() *audit.Dispatcher {
	return audit.NewDispatcher(audit.New(nil))
}

func (fx *fixture) createInput(date, clock string) CreateAppointmentInput {
	return CreateAppointmentInput{
		BusinessID: fx.biz.ID,
		UserID:     uuid.New(),
		ClientID:   fx.client.ID,
		ServiceID:  fx.service.ID,
		StaffID:    &fx.staff.ID,
		Date:       date,
		Time:       clock,
	}
}

// ------------------------------------------------------
// Create
// ------------------------------------------------------

func TestCreateAppointment_Success(t *testing.T) {
	fx := newFixture(t)
	uc := NewCreateAppointment(fx.repo, fx.dispatcher(), fx.offsets)

	ap, err := uc.Execute(context.Background(), fx.createInput("2030-06-03", "10:00"))
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusScheduled), ap.Status)
	assert.Equal(t, 30*time.Minute, ap.EndTime.Sub(ap.StartTime))

	rs, _ := fx.repo.ListReminders(context.Background(), ap.ID)
	require.Len(t, rs, 3, "24h email, 1h email, 1h sms")
	for _, r := range rs {
		assert.Equal(t, models.ReminderStatusPending, r.Status)
	}
}

func TestCreateAppointment_ConflictLeavesNothingBehind(t *testing.T) {
	fx := newFixture(t)
	uc := NewCreateAppointment(fx.repo, fx.dispatcher(), fx.offsets)

	_, err := uc.Execute(context.Background(), fx.createInput("2030-06-03", "10:00"))
	require.NoError(t, err)

	remindersBefore := len(fx.repo.reminders)

	_, err = uc.Execute(context.Background(), fx.createInput("2030-06-03", "10:15"))
	assert.True(t, httperr.IsBusiness(err, "staff_unavailable"))

	assert.Len(t, fx.repo.appointments, 1)
	assert.Len(t, fx.repo.reminders, remindersBefore, "failed booking wrote no reminder rows")
}

func TestCreateAppointment_BackToBack(t *testing.T) {
	fx := newFixture(t)
	uc := NewCreateAppointment(fx.repo, fx.dispatcher(), fx.offsets)

	_, err := uc.Execute(context.Background(), fx.createInput("2030-06-03", "10:00"))
	require.NoError(t, err)

	// starts exactly where the first one ends
	_, err = uc.Execute(context.Background(), fx.createInput("2030-06-03", "10:30"))
	assert.NoError(t, err)
}

func TestCreateAppointment_OutsideBusinessHours(t *testing.T) {
	fx := newFixture(t)
	uc := NewCreateAppointment(fx.repo, fx.dispatcher(), fx.offsets)

	_, err := uc.Execute(context.Background(), fx.createInput("2030-06-03", "16:31"))
	assert.True(t, httperr.IsBusiness(err, "outside_business_hours"))
}

func TestCreateAppointment_InactiveServiceAndStaff(t *testing.T) {
	fx := newFixture(t)
	uc := NewCreateAppointment(fx.repo, fx.dispatcher(), fx.offsets)

	fx.service.Active = false
	_, err := uc.Execute(context.Background(), fx.createInput("2030-06-03", "10:00"))
	assert.True(t, httperr.IsBusiness(err, "service_inactive"))

	fx.service.Active = true
	fx.staff.Active = false
	_, err = uc.Execute(context.Background(), fx.createInput("2030-06-03", "10:00"))
	assert.True(t, httperr.IsBusiness(err, "staff_inactive"))
}

func TestCreateAppointment_StaffServiceAssociation(t *testing.T) {
	fx := newFixture(t)
	uc := NewCreateAppointment(fx.repo, fx.dispatcher(), fx.offsets)

	other := &models.Service{
		ID: uuid.New(), BusinessID: fx.biz.ID,
		Name: "Massage", DurationMin: 60, Active: true,
	}
	fx.repo.services[other.ID] = other

	in := fx.createInput("2030-06-03", "10:00")
	in.ServiceID = other.ID
	_, err := uc.Execute(context.Background(), in)
	assert.True(t, httperr.IsBusiness(err, "staff_cannot_perform_service"))
}

// ------------------------------------------------------
// Status transitions
// ------------------------------------------------------

func TestUpdateStatus_CancelFailsPendingReminders(t *testing.T) {
	fx := newFixture(t)
	create := NewCreateAppointment(fx.repo, fx.dispatcher(), fx.offsets)
	update := NewUpdateAppointmentStatus(fx.repo, fx.dispatcher())

	ap, err := create.Execute(context.Background(), fx.createInput("2030-06-03", "10:00"))
	require.NoError(t, err)

	updated, err := update.Execute(context.Background(), fx.biz.ID, uuid.New(), ap.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), updated.Status)
	require.NotNil(t, updated.CancelledAt)

	rs, _ := fx.repo.ListReminders(context.Background(), ap.ID)
	for _, r := range rs {
		assert.Equal(t, models.ReminderStatusFailed, r.Status, "no pending reminder survives a cancel")
	}
}

func TestUpdateStatus_IllegalTransition(t *testing.T) {
	fx := newFixture(t)
	create := NewCreateAppointment(fx.repo, fx.dispatcher(), fx.offsets)
	update := NewUpdateAppointmentStatus(fx.repo, fx.dispatcher())

	ap, err := create.Execute(context.Background(), fx.createInput("2030-06-03", "10:00"))
	require.NoError(t, err)

	// scheduled -> completed skips confirmation
	_, err = update.Execute(context.Background(), fx.biz.ID, uuid.New(), ap.ID, "completed")
	assert.True(t, httperr.IsBusiness(err, "invalid_transition"))

	stored, _ := fx.repo.GetAppointment(context.Background(), fx.biz.ID, ap.ID)
	assert.Equal(t, string(domain.StatusScheduled), stored.Status)
}

// ------------------------------------------------------
// Reschedule
// ------------------------------------------------------

func TestReschedule_TerminalAppointment(t *testing.T) {
	fx := newFixture(t)
	create := NewCreateAppointment(fx.repo, fx.dispatcher(), fx.offsets)
	update := NewUpdateAppointmentStatus(fx.repo, fx.dispatcher())
	resched := NewRescheduleAppointment(fx.repo, fx.dispatcher(), fx.offsets)

	ap, err := create.Execute(context.Background(), fx.createInput("2030-06-03", "10:00"))
	require.NoError(t, err)

	_, err = update.Execute(context.Background(), fx.biz.ID, uuid.New(), ap.ID, "confirmed")
	require.NoError(t, err)
	_, err = update.Execute(context.Background(), fx.biz.ID, uuid.New(), ap.ID, "completed")
	require.NoError(t, err)

	_, err = resched.Execute(context.Background(), RescheduleAppointmentInput{
		BusinessID:    fx.biz.ID,
		UserID:        uuid.New(),
		AppointmentID: ap.ID,
		Date:          "2030-06-04",
		Time:          "11:00",
	})
	assert.True(t, httperr.IsBusiness(err, "cannot_reschedule_terminal"))
}

func TestReschedule_ConflictKeepsOriginalTime(t *testing.T) {
	fx := newFixture(t)
	create := NewCreateAppointment(fx.repo, fx.dispatcher(), fx.offsets)
	resched := NewRescheduleAppointment(fx.repo, fx.dispatcher(), fx.offsets)

	first, err := create.Execute(context.Background(), fx.createInput("2030-06-03", "10:00"))
	require.NoError(t, err)
	second, err := create.Execute(context.Background(), fx.createInput("2030-06-03", "14:00"))
	require.NoError(t, err)

	_, err = resched.Execute(context.Background(), RescheduleAppointmentInput{
		BusinessID:    fx.biz.ID,
		UserID:        uuid.New(),
		AppointmentID: second.ID,
		Date:          "2030-06-03",
		Time:          "10:15",
	})
	assert.True(t, httperr.IsBusiness(err, "staff_unavailable"))

	// re-read after the failed attempt: pre-attempt state intact
	stored, _ := fx.repo.GetAppointment(context.Background(), fx.biz.ID, second.ID)
	assert.Equal(t, second.StartTime, stored.StartTime)
	assert.Equal(t, second.EndTime, stored.EndTime)

	// the blocking appointment was never touched either
	blocker, _ := fx.repo.GetAppointment(context.Background(), fx.biz.ID, first.ID)
	assert.Equal(t, first.StartTime, blocker.StartTime)
	assert.Equal(t, first.EndTime, blocker.EndTime)
}

func TestReschedule_OwnRowExcluded(t *testing.T) {
	fx := newFixture(t)
	create := NewCreateAppointment(fx.repo, fx.dispatcher(), fx.offsets)
	resched := NewRescheduleAppointment(fx.repo, fx.dispatcher(), fx.offsets)

	ap, err := create.Execute(context.Background(), fx.createInput("2030-06-03", "10:00"))
	require.NoError(t, err)

	// shifting by 15 minutes overlaps the old window, which must not count
	updated, err := resched.Execute(context.Background(), RescheduleAppointmentInput{
		BusinessID:    fx.biz.ID,
		UserID:        uuid.New(),
		AppointmentID: ap.ID,
		Date:          "2030-06-03",
		Time:          "10:15",
	})
	require.NoError(t, err)
	assert.Equal(t, "10:15", updated.StartTime.Format("15:04"))
	assert.Equal(t, "10:45", updated.EndTime.Format("15:04"))
}
