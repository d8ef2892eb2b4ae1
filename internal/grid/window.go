package grid

import "time"

const (
	// DaysPerWeek is the width of the visible window.
	DaysPerWeek = 7
	// HoursPerDay is the height of the grid.
	HoursPerDay = 24
	// HorizonDays bounds how far ahead the window may reach: the last visible
	// day is at most today+27 (a fixed 4-week horizon).
	HorizonDays = 28
)

// Window is the rolling 7-day view anchored at Start. It can never begin
// before today and never reach past the 4-week horizon.
type Window struct {
	Start time.Time
	today time.Time
}

// NewWindow builds a window anchored at start, clamped into the legal range
// for the given today. Both inputs are truncated to midnight.
func NewWindow(today, start time.Time) Window {
	today = truncateDay(today)
	start = truncateDay(start)

	latest := today.AddDate(0, 0, HorizonDays-DaysPerWeek)
	if start.Before(today) {
		start = today
	}
	if start.After(latest) {
		start = latest
	}
	return Window{Start: start, today: today}
}

// Next advances the window one week. Advancing past the horizon is a no-op.
func (w Window) Next() Window {
	next := w.Start.AddDate(0, 0, DaysPerWeek)
	latest := w.today.AddDate(0, 0, HorizonDays-DaysPerWeek)
	if next.After(latest) {
		return w
	}
	return Window{Start: next, today: w.today}
}

// Prev moves the window one week back, clamping to today rather than failing.
func (w Window) Prev() Window {
	prev := w.Start.AddDate(0, 0, -DaysPerWeek)
	if prev.Before(w.today) {
		prev = w.today
	}
	return Window{Start: prev, today: w.today}
}

// Days returns the seven civil dates covered by the window.
func (w Window) Days() [DaysPerWeek]time.Time {
	var days [DaysPerWeek]time.Time
	for i := range days {
		days[i] = w.Start.AddDate(0, 0, i)
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
