package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appointly/appointment-scheduler/internal/domain/schedule"
	"github.com/appointly/appointment-scheduler/internal/httperr"
)

// Monday 2026-03-02, business open 09:00-17:00.
var (
	monday    = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	openWeek  = schedule.Week{time.Monday: {Open: "09:00", Close: "17:00"}}
	fullStaff = schedule.Week{time.Monday: {Open: "09:00", Close: "17:00"}}
)

func mondayAt(h, m int) time.Time {
	return monday.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func TestCheckAvailability_WithinBusinessHours(t *testing.T) {
	// 30-minute service at 16:30 ends exactly at close
	win, err := CheckAvailability(AvailabilityInput{
		Start:    mondayAt(16, 30),
		Duration: 30 * time.Minute,
		Hours:    openWeek,
	})
	require.NoError(t, err)
	assert.Equal(t, mondayAt(16, 30), win.Start)
	assert.Equal(t, mondayAt(17, 0), win.End)

	// 16:31 would end 17:01, past close
	_, err = CheckAvailability(AvailabilityInput{
		Start:    mondayAt(16, 31),
		Duration: 30 * time.Minute,
		Hours:    openWeek,
	})
	assert.True(t, httperr.IsBusiness(err, "outside_business_hours"))
}

func TestCheckAvailability_ClosedDay(t *testing.T) {
	tuesday := mondayAt(10, 0).AddDate(0, 0, 1)
	_, err := CheckAvailability(AvailabilityInput{
		Start:    tuesday,
		Duration: 30 * time.Minute,
		Hours:    openWeek,
	})
	assert.True(t, httperr.IsBusiness(err, "outside_business_hours"))
}

func TestCheckAvailability_CrossesMidnight(t *testing.T) {
	_, err := CheckAvailability(AvailabilityInput{
		Start:    mondayAt(23, 45),
		Duration: 30 * time.Minute,
		Hours:    openWeek,
	})
	assert.True(t, httperr.IsBusiness(err, "crosses_midnight"))
}

func TestCheckAvailability_StaffSchedule(t *testing.T) {
	// staff works Tuesday 10:00-12:00; 09:30 booking falls before the shift
	tuesdayStaff := schedule.Week{time.Tuesday: {Open: "10:00", Close: "12:00"}}
	businessAllWeek := schedule.Week{
		time.Monday:  {Open: "09:00", Close: "17:00"},
		time.Tuesday: {Open: "09:00", Close: "17:00"},
	}

	tuesday := monday.AddDate(0, 0, 1)
	_, err := CheckAvailability(AvailabilityInput{
		Start:         tuesday.Add(9*time.Hour + 30*time.Minute),
		Duration:      30 * time.Minute,
		Hours:         businessAllWeek,
		StaffSchedule: tuesdayStaff,
	})
	assert.True(t, httperr.IsBusiness(err, "outside_staff_schedule"))

	win, err := CheckAvailability(AvailabilityInput{
		Start:         tuesday.Add(10 * time.Hour),
		Duration:      30 * time.Minute,
		Hours:         businessAllWeek,
		StaffSchedule: tuesdayStaff,
	})
	require.NoError(t, err)
	assert.Equal(t, tuesday.Add(10*time.Hour+30*time.Minute), win.End)
}

func TestCheckAvailability_StaffConflict(t *testing.T) {
	booked := []Interval{
		{Start: mondayAt(10, 0), End: mondayAt(10, 30)},
	}

	_, err := CheckAvailability(AvailabilityInput{
		Start:         mondayAt(10, 15),
		Duration:      30 * time.Minute,
		Hours:         openWeek,
		StaffSchedule: fullStaff,
		Booked:        booked,
	})
	assert.True(t, httperr.IsBusiness(err, "staff_unavailable"))

	// back-to-back is not a conflict: [10:00,10:30) then [10:30,11:00)
	win, err := CheckAvailability(AvailabilityInput{
		Start:         mondayAt(10, 30),
		Duration:      30 * time.Minute,
		Hours:         openWeek,
		StaffSchedule: fullStaff,
		Booked:        booked,
	})
	require.NoError(t, err)
	assert.Equal(t, mondayAt(10, 30), win.Start)

	// and ending exactly where an existing one starts
	_, err = CheckAvailability(AvailabilityInput{
		Start:         mondayAt(9, 30),
		Duration:      30 * time.Minute,
		Hours:         openWeek,
		StaffSchedule: fullStaff,
		Booked:        booked,
	})
	assert.NoError(t, err)
}

func TestCheckAvailability_NoStaffSkipsStaffChecks(t *testing.T) {
	// unassigned appointments only need to fit business hours
	win, err := CheckAvailability(AvailabilityInput{
		Start:    mondayAt(10, 15),
		Duration: 30 * time.Minute,
		Hours:    openWeek,
		Booked: []Interval{
			{Start: mondayAt(10, 0), End: mondayAt(11, 0)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, mondayAt(10, 45), win.End)
}

func TestIntervalOverlaps(t *testing.T) {
	a := Interval{Start: mondayAt(9, 0), End: mondayAt(10, 0)}

	assert.True(t, a.Overlaps(Interval{Start: mondayAt(9, 30), End: mondayAt(10, 30)}))
	assert.True(t, a.Overlaps(Interval{Start: mondayAt(8, 0), End: mondayAt(9, 1)}))
	assert.False(t, a.Overlaps(Interval{Start: mondayAt(10, 0), End: mondayAt(11, 0)}))
	assert.False(t, a.Overlaps(Interval{Start: mondayAt(8, 0), End: mondayAt(9, 0)}))
}
