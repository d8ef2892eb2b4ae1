// Package grid classifies sub-court availability into a weekly slot matrix.
// All classification is a pure function of the inputs; the builder itself
// holds no booking or selection state.
package grid

import (
	"time"

	"fieldbook/internal/models"
)

// BookingIndex maps slot keys to the status of the reservation occupying them.
type BookingIndex map[string]string

// IndexBookings builds a BookingIndex for one sub-court. Bookings for other
// sub-courts are dropped even if the server leaked them into the response, and
// statuses other than CONFIRMED/PENDING are ignored. A confirmed reservation
// wins over a pending one on the same slot.
func IndexBookings(subCourtID int64, bookings []models.ExistingBooking) BookingIndex {
	idx := make(BookingIndex, len(bookings))
	for _, b := range bookings {
		if b.SubCourtID != subCourtID {
			continue
		}
		if b.Status != models.BookingConfirmed && b.Status != models.BookingPending {
			continue
		}
		key := models.SlotKeyFromTime(b.StartTime)
		if idx[key] == models.BookingConfirmed {
			continue
		}
		idx[key] = b.Status
	}
	return idx
}

// Selection reports which slots the user currently has selected.
type Selection interface {
	Contains(key string) bool
}

// Builder classifies slots. Now is injectable so tests can pin the clock.
type Builder struct {
	Now func() time.Time
}

// NewBuilder returns a builder using the real clock when now is nil.
func NewBuilder(now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{Now: now}
}

// Classify returns the status of a single slot for a sub-court open
// [openHour, closeHour). Precedence is fixed: outside hours, then past, then
// booked, then pending, then selected, then available.
func (b *Builder) Classify(openHour, closeHour int, slot models.Slot, bookings BookingIndex, selected Selection) models.SlotStatus {
	if slot.StartHour < openHour || slot.StartHour >= closeHour {
		return models.StatusOutsideHours
	}
	if slot.StartTime().Before(b.Now()) {
		return models.StatusPast
	}
	switch bookings[slot.Key()] {
	case models.BookingConfirmed:
		return models.StatusBooked
	case models.BookingPending:
		return models.StatusPending
	}
	if selected != nil && selected.Contains(slot.Key()) {
		return models.StatusSelected
	}
	return models.StatusAvailable
}

// WeekGrid is one classified 7x24 view.
type WeekGrid struct {
	Days  [DaysPerWeek]time.Time
	Cells [DaysPerWeek][HoursPerDay]models.SlotStatus
}

// BuildWeek classifies every cell of the window.
func (b *Builder) BuildWeek(openHour, closeHour int, w Window, bookings BookingIndex, selected Selection) WeekGrid {
	out := WeekGrid{Days: w.Days()}
	for d, day := range out.Days {
		for h := 0; h < HoursPerDay; h++ {
			slot := models.Slot{Date: day, StartHour: h}
			out.Cells[d][h] = b.Classify(openHour, closeHour, slot, bookings, selected)
		}
	}
	return out
}
