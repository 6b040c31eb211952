package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appointly/appointment-scheduler/internal/httperr"
)

func TestTimeWindowValidate(t *testing.T) {
	assert.NoError(t, TimeWindow{Open: "09:00", Close: "17:00"}.Validate())

	err := TimeWindow{Open: "17:00", Close: "09:00"}.Validate()
	assert.True(t, httperr.IsBusiness(err, "open_not_before_close"))

	// equal open/close is a zero-length day, also rejected
	err = TimeWindow{Open: "09:00", Close: "09:00"}.Validate()
	assert.True(t, httperr.IsBusiness(err, "open_not_before_close"))

	err = TimeWindow{Open: "9am", Close: "17:00"}.Validate()
	assert.True(t, httperr.IsBusiness(err, "invalid_time_format"))

	// midnight-spanning windows are not supported
	err = TimeWindow{Open: "22:00", Close: "02:00"}.Validate()
	assert.True(t, httperr.IsBusiness(err, "open_not_before_close"))
}

func TestTimeWindowContains(t *testing.T) {
	w := TimeWindow{Open: "09:00", Close: "17:00"}

	// Monday 2026-03-02
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	at := func(h, m int) time.Time {
		return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
	}

	assert.True(t, w.Contains(at(9, 0), at(9, 30)))
	assert.True(t, w.Contains(at(16, 30), at(17, 0)), "end may touch close exactly")
	assert.False(t, w.Contains(at(16, 31), at(17, 1)))
	assert.False(t, w.Contains(at(8, 45), at(9, 15)))
}

func TestWeekClosedAndWithin(t *testing.T) {
	wk := Week{
		time.Monday: {Open: "09:00", Close: "17:00"},
	}
	require.NoError(t, wk.Validate())

	assert.False(t, wk.Closed(time.Monday))
	assert.True(t, wk.Closed(time.Tuesday))

	monday := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	assert.True(t, wk.Within(monday, monday.Add(30*time.Minute)))

	tuesday := monday.AddDate(0, 0, 1)
	assert.False(t, wk.Within(tuesday, tuesday.Add(30*time.Minute)))
}

func TestWeekValidateRejectsBadDay(t *testing.T) {
	wk := Week{
		time.Weekday(7): {Open: "09:00", Close: "17:00"},
	}
	assert.True(t, httperr.IsBusiness(wk.Validate(), "invalid_day_of_week"))
}
