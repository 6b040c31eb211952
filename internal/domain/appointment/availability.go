package appointment

import (
	"time"

	"github.com/appointly/appointment-scheduler/internal/domain/schedule"
	"github.com/appointly/appointment-scheduler/internal/httperr"
)

// Interval is a half-open [Start, End) time range. Back-to-back intervals
// sharing a boundary do not overlap.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && iv.End.After(other.Start)
}

// AvailabilityInput carries everything the checker needs, already fetched
// and localized to the business timezone. Booked must hold only intervals
// of appointments whose status still blocks the slot, for the assigned
// staff member, excluding the appointment being rescheduled (if any).
type AvailabilityInput struct {
	Start    time.Time
	Duration time.Duration

	Hours         schedule.Week
	StaffSchedule schedule.Week // nil when no staff assigned
	Booked        []Interval
}

// CheckAvailability decides whether the candidate window is legal:
// same calendar day, inside business hours, inside the staff schedule, and
// free of overlaps with the staff member's existing appointments. The
// first failing rule wins. Callers re-run this inside the transaction that
// writes the appointment.
func CheckAvailability(in AvailabilityInput) (Interval, error) {
	start := in.Start
	end := start.Add(in.Duration)

	y1, m1, d1 := start.Date()
	y2, m2, d2 := end.Date()
	if y1 != y2 || m1 != m2 || d1 != d2 {
		return Interval{}, httperr.ErrBusiness("crosses_midnight")
	}

	if !in.Hours.Within(start, end) {
		return Interval{}, httperr.ErrBusiness("outside_business_hours")
	}

	if in.StaffSchedule != nil {
		if !in.StaffSchedule.Within(start, end) {
			return Interval{}, httperr.ErrBusiness("outside_staff_schedule")
		}

		candidate := Interval{Start: start, End: end}
		for _, booked := range in.Booked {
			if candidate.Overlaps(booked) {
				return Interval{}, httperr.ErrBusiness("staff_unavailable")
			}
		}
	}

	return Interval{Start: start, End: end}, nil
}
