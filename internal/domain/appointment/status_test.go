package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appointly/appointment-scheduler/internal/httperr"
	"github.com/appointly/appointment-scheduler/internal/models"
)

func TestCanTransition(t *testing.T) {
	legal := []struct{ from, to Status }{
		{StatusScheduled, StatusConfirmed},
		{StatusScheduled, StatusCancelled},
		{StatusScheduled, StatusNoShow},
		{StatusConfirmed, StatusCompleted},
		{StatusConfirmed, StatusCancelled},
		{StatusConfirmed, StatusNoShow},
	}
	for _, tc := range legal {
		assert.NoError(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	// completed cannot be reached without confirmation first
	err := CanTransition(StatusScheduled, StatusCompleted)
	assert.True(t, httperr.IsBusiness(err, "invalid_transition"))
	assert.Contains(t, err.Error(), "scheduled")
	assert.Contains(t, err.Error(), "completed")

	// terminal states accept nothing
	for _, terminal := range []Status{StatusCompleted, StatusCancelled, StatusNoShow} {
		for _, to := range []Status{StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow} {
			err := CanTransition(terminal, to)
			assert.True(t, httperr.IsBusiness(err, "invalid_transition"), "%s -> %s", terminal, to)
		}
	}
}

func TestStatusFlags(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusNoShow.Terminal())
	assert.False(t, StatusScheduled.Terminal())
	assert.False(t, StatusConfirmed.Terminal())

	// completed appointments still occupy their historical slot
	assert.True(t, StatusScheduled.BlocksSlot())
	assert.True(t, StatusConfirmed.BlocksSlot())
	assert.True(t, StatusCompleted.BlocksSlot())
	assert.False(t, StatusCancelled.BlocksSlot())
	assert.False(t, StatusNoShow.BlocksSlot())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("confirmed")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, s)

	// the token is hyphenated on the wire and in storage
	s, err = ParseStatus("no-show")
	require.NoError(t, err)
	assert.Equal(t, StatusNoShow, s)

	for _, bad := range []string{"done", "no_show"} {
		_, err = ParseStatus(bad)
		assert.True(t, httperr.IsBusiness(err, "invalid_status"), bad)
	}
}

func TestTransitionStampsTimestamps(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	ap := &models.Appointment{Status: string(StatusScheduled)}
	require.NoError(t, Transition(ap, StatusCancelled, now))
	assert.Equal(t, string(StatusCancelled), ap.Status)
	require.NotNil(t, ap.CancelledAt)
	assert.Equal(t, now, *ap.CancelledAt)

	ap = &models.Appointment{Status: string(StatusConfirmed)}
	require.NoError(t, Transition(ap, StatusCompleted, now))
	require.NotNil(t, ap.CompletedAt)
	assert.Equal(t, now, *ap.CompletedAt)

	ap = &models.Appointment{Status: string(StatusCompleted)}
	err := Transition(ap, StatusCancelled, now)
	assert.True(t, httperr.IsBusiness(err, "invalid_transition"))
	assert.Equal(t, string(StatusCompleted), ap.Status, "status untouched after illegal transition")
}

func TestCanReschedule(t *testing.T) {
	assert.NoError(t, CanReschedule(StatusScheduled))
	assert.NoError(t, CanReschedule(StatusConfirmed))

	for _, s := range []Status{StatusCompleted, StatusCancelled, StatusNoShow} {
		err := CanReschedule(s)
		assert.True(t, httperr.IsBusiness(err, "cannot_reschedule_terminal"), "status %s", s)
	}
}
