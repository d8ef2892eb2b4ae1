package grid

import (
	"testing"
	"time"

	"fieldbook/internal/models"
)

type selectionSet map[string]bool

func (s selectionSet) Contains(key string) bool { return s[key] }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassify(t *testing.T) {
	// Wall clock pinned mid-day so same-day elapsed hours are past.
	now := time.Date(2025, 1, 10, 10, 30, 0, 0, time.UTC)
	b := NewBuilder(func() time.Time { return now })

	bookings := IndexBookings(7, []models.ExistingBooking{
		{ID: "b1", SubCourtID: 7, StartTime: time.Date(2025, 1, 12, 14, 0, 0, 0, time.UTC), Status: models.BookingConfirmed},
		{ID: "b2", SubCourtID: 7, StartTime: time.Date(2025, 1, 12, 15, 0, 0, 0, time.UTC), Status: models.BookingPending},
		{ID: "b3", SubCourtID: 7, StartTime: time.Date(2025, 1, 12, 16, 0, 0, 0, time.UTC), Status: "CANCELLED"},
		// Wrong sub-court, must be ignored even though status is valid.
		{ID: "b4", SubCourtID: 8, StartTime: time.Date(2025, 1, 13, 10, 0, 0, 0, time.UTC), Status: models.BookingConfirmed},
		// Past slot that is also booked: past wins.
		{ID: "b5", SubCourtID: 7, StartTime: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC), Status: models.BookingConfirmed},
	})
	selected := selectionSet{"2025-01-11-12:00": true}

	tests := []struct {
		name string
		slot models.Slot
		want models.SlotStatus
	}{
		{"before opening", models.Slot{Date: day(2025, 1, 10), StartHour: 8}, models.StatusOutsideHours},
		{"at closing hour", models.Slot{Date: day(2025, 1, 11), StartHour: 17}, models.StatusOutsideHours},
		{"elapsed hour today", models.Slot{Date: day(2025, 1, 10), StartHour: 10}, models.StatusPast},
		{"past day", models.Slot{Date: day(2025, 1, 9), StartHour: 12}, models.StatusPast},
		{"past beats booked", models.Slot{Date: day(2025, 1, 10), StartHour: 9}, models.StatusPast},
		{"confirmed booking", models.Slot{Date: day(2025, 1, 12), StartHour: 14}, models.StatusBooked},
		{"pending booking", models.Slot{Date: day(2025, 1, 12), StartHour: 15}, models.StatusPending},
		{"ignored status", models.Slot{Date: day(2025, 1, 12), StartHour: 16}, models.StatusAvailable},
		{"other sub-court ignored", models.Slot{Date: day(2025, 1, 13), StartHour: 10}, models.StatusAvailable},
		{"selected", models.Slot{Date: day(2025, 1, 11), StartHour: 12}, models.StatusSelected},
		{"free future slot", models.Slot{Date: day(2025, 1, 10), StartHour: 11}, models.StatusAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Classify(9, 17, tt.slot, bookings, selected)
			if got != tt.want {
				t.Errorf("Classify(%s) = %s, want %s", tt.slot.Key(), got, tt.want)
			}
		})
	}
}

func TestIndexBookingsConfirmedWins(t *testing.T) {
	start := time.Date(2025, 2, 1, 14, 0, 0, 0, time.UTC)
	idx := IndexBookings(1, []models.ExistingBooking{
		{SubCourtID: 1, StartTime: start, Status: models.BookingPending},
		{SubCourtID: 1, StartTime: start, Status: models.BookingConfirmed},
		{SubCourtID: 1, StartTime: start, Status: models.BookingPending},
	})
	if got := idx["2025-02-01-14:00"]; got != models.BookingConfirmed {
		t.Errorf("expected confirmed to win, got %q", got)
	}
}

func TestBuildWeekNoAvailableOutsideHours(t *testing.T) {
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	b := NewBuilder(func() time.Time { return now })
	w := NewWindow(now, now)

	g := b.BuildWeek(9, 17, w, nil, nil)
	for d := range g.Cells {
		for h, status := range g.Cells[d] {
			if (h < 9 || h >= 17) && status != models.StatusOutsideHours {
				t.Fatalf("day %d hour %d: got %s, want outside_hours", d, h, status)
			}
			if status == models.StatusAvailable && (h < 9 || h >= 17) {
				t.Fatalf("available cell outside operating hours at day %d hour %d", d, h)
			}
		}
	}
}

func TestSlotKeyStable(t *testing.T) {
	slot := models.Slot{Date: day(2025, 1, 10), StartHour: 8}
	if slot.Key() != "2025-01-10-08:00" {
		t.Errorf("unexpected key %q", slot.Key())
	}
	if models.SlotKeyFromTime(slot.StartTime()) != slot.Key() {
		t.Error("timestamp-derived key must match slot key")
	}
}
