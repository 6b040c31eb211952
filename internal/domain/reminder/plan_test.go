package reminder

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appointly/appointment-scheduler/internal/models"
)

func TestDefaultOffsets(t *testing.T) {
	offsets := DefaultOffsets([]time.Duration{time.Hour, 24 * time.Hour})

	require.Len(t, offsets, 3)
	assert.Equal(t, 24*time.Hour, offsets[0].Before)
	assert.Equal(t, models.ReminderTypeEmail, offsets[0].Type)
	assert.Equal(t, time.Hour, offsets[1].Before)
	assert.Equal(t, models.ReminderTypeEmail, offsets[1].Type)
	// SMS rides on the shortest lead time
	assert.Equal(t, time.Hour, offsets[2].Before)
	assert.Equal(t, models.ReminderTypeSMS, offsets[2].Type)

	assert.Nil(t, DefaultOffsets(nil))
}

func TestPlan(t *testing.T) {
	id := uuid.New()
	start := time.Date(2026, 3, 3, 14, 0, 0, 0, time.UTC)
	now := start.Add(-48 * time.Hour)

	offsets := DefaultOffsets([]time.Duration{time.Hour, 24 * time.Hour})
	rs := Plan(id, start, now, offsets)

	require.Len(t, rs, 3)
	assert.Equal(t, start.Add(-24*time.Hour), rs[0].ScheduledTime)
	assert.Equal(t, start.Add(-time.Hour), rs[1].ScheduledTime)
	for _, r := range rs {
		assert.Equal(t, id, r.AppointmentID)
		assert.Equal(t, models.ReminderStatusPending, r.Status)
		assert.Nil(t, r.SentAt)
	}
}

func TestPlanSkipsElapsedOffsets(t *testing.T) {
	id := uuid.New()
	start := time.Date(2026, 3, 3, 14, 0, 0, 0, time.UTC)
	// booked two hours ahead: the 24h email is already in the past
	now := start.Add(-2 * time.Hour)

	rs := Plan(id, start, now, DefaultOffsets([]time.Duration{time.Hour, 24 * time.Hour}))

	require.Len(t, rs, 2)
	for _, r := range rs {
		assert.Equal(t, start.Add(-time.Hour), r.ScheduledTime)
	}
}
