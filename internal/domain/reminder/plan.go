package reminder

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/appointly/appointment-scheduler/internal/models"
)

// Offset names one reminder to send some duration before the appointment
// starts.
type Offset struct {
	Before time.Duration
	Type   string
}

// DefaultOffsets builds the reminder plan shape from configured lead times:
// an email per lead time, plus an SMS for the shortest one (the last nudge).
func DefaultOffsets(leads []time.Duration) []Offset {
	if len(leads) == 0 {
		return nil
	}

	sorted := make([]time.Duration, len(leads))
	copy(sorted, leads)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })

	offsets := make([]Offset, 0, len(sorted)+1)
	for _, d := range sorted {
		offsets = append(offsets, Offset{Before: d, Type: models.ReminderTypeEmail})
	}
	offsets = append(offsets, Offset{
		Before: sorted[len(sorted)-1],
		Type:   models.ReminderTypeSMS,
	})
	return offsets
}

// Plan produces the pending reminder rows for an appointment starting at
// start. Reminders whose send time is already in the past are skipped, so
// a booking made an hour ahead only gets the offsets that still make sense.
func Plan(appointmentID uuid.UUID, start, now time.Time, offsets []Offset) []models.AppointmentReminder {
	var out []models.AppointmentReminder
	for _, off := range offsets {
		at := start.Add(-off.Before)
		if at.Before(now) {
			continue
		}
		out = append(out, models.AppointmentReminder{
			AppointmentID: appointmentID,
			ReminderType:  off.Type,
			ScheduledTime: at,
			Status:        models.ReminderStatusPending,
		})
	}
	return out
}
