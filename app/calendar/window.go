package calendar

import (
	"time"
)

// Window decides whether an event falls into the reporting period of a run.
//
// In rolling mode the period runs from today's start hour plus one minute
// through the next day's start hour on the dot, both ends included. In
// calendar-day mode the event's (corrected) date must equal today's date.
type Window struct {
	mode      WindowMode
	startHour int
	loc       *time.Location
}

func NewWindow(cfg *Config) *Window {
	return &Window{
		mode:      cfg.Window.Mode,
		startHour: cfg.Window.GetStartHour(),
		loc:       cfg.Location,
	}
}

// Bounds returns the first and last instants of the period for the run at
// now. The rolling end is inclusive; the calendar-day end is the next
// midnight and is exclusive.
func (w *Window) Bounds(now time.Time) (time.Time, time.Time) {
	local := now.In(w.loc)
	y, m, d := local.Date()

	if w.mode == WindowCalendarDay {
		start := time.Date(y, m, d, 0, 0, 0, 0, w.loc)
		return start, start.AddDate(0, 0, 1)
	}

	start := time.Date(y, m, d, w.startHour, 1, 0, 0, w.loc)
	end := time.Date(y, m, d+1, w.startHour, 0, 0, 0, w.loc)
	return start, end
}

func (w *Window) Contains(t, now time.Time) bool {
	start, end := w.Bounds(now)
	if t.Before(start) {
		return false
	}
	if w.mode == WindowCalendarDay {
		return t.Before(end)
	}
	return !t.After(end)
}
