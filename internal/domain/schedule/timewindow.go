package schedule

import (
	"time"

	"github.com/appointly/appointment-scheduler/internal/httperr"
)

// TimeWindow is one [open, close) interval within a single calendar day,
// expressed as "15:04" times. Windows never span midnight: Open must be
// strictly before Close.
type TimeWindow struct {
	Open  string
	Close string
}

// Week maps a weekday to its window. A missing day is closed.
type Week map[time.Weekday]TimeWindow

func parseHM(hm string) (time.Time, error) {
	return time.Parse("15:04", hm)
}

// Validate rejects malformed times and windows where Open >= Close.
func (w TimeWindow) Validate() error {
	open, err := parseHM(w.Open)
	if err != nil {
		return httperr.ErrBusiness("invalid_time_format")
	}
	close, err := parseHM(w.Close)
	if err != nil {
		return httperr.ErrBusiness("invalid_time_format")
	}
	if !open.Before(close) {
		return httperr.ErrBusiness("open_not_before_close")
	}
	return nil
}

// Materialize places the window's open and close instants on the calendar
// day of ref, in ref's location.
func (w TimeWindow) Materialize(ref time.Time) (time.Time, time.Time) {
	loc := ref.Location()

	at := func(hm string) time.Time {
		t, _ := parseHM(hm)
		return time.Date(
			ref.Year(), ref.Month(), ref.Day(),
			t.Hour(), t.Minute(), 0, 0,
			loc,
		)
	}

	return at(w.Open), at(w.Close)
}

// Contains reports whether [start, end) fits inside the window, placed on
// start's calendar day. End may touch the close boundary exactly.
func (w TimeWindow) Contains(start, end time.Time) bool {
	open, close := w.Materialize(start)
	return !start.Before(open) && !end.After(close)
}

func (wk Week) Validate() error {
	for day, w := range wk {
		if day < time.Sunday || day > time.Saturday {
			return httperr.ErrBusiness("invalid_day_of_week")
		}
		if err := w.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Closed reports whether no window is configured for the given weekday.
func (wk Week) Closed(day time.Weekday) bool {
	_, ok := wk[day]
	return !ok
}

// Within reports whether [start, end) fits inside the day's window.
// A closed day contains nothing.
func (wk Week) Within(start, end time.Time) bool {
	w, ok := wk[start.Weekday()]
	if !ok {
		return false
	}
	return w.Contains(start, end)
}
