package grid

import (
	"testing"
	"time"
)

func TestWindowBounds(t *testing.T) {
	today := time.Date(2025, 1, 10, 15, 42, 0, 0, time.UTC)

	t.Run("anchor before today clamps", func(t *testing.T) {
		w := NewWindow(today, today.AddDate(0, 0, -3))
		if !w.Start.Equal(day(2025, 1, 10)) {
			t.Errorf("start = %v, want today", w.Start)
		}
	})

	t.Run("anchor past horizon clamps", func(t *testing.T) {
		w := NewWindow(today, today.AddDate(0, 0, 60))
		if !w.Start.Equal(day(2025, 1, 31)) {
			t.Errorf("start = %v, want today+21", w.Start)
		}
	})

	t.Run("next stops at horizon", func(t *testing.T) {
		w := NewWindow(today, today)
		for i := 0; i < 3; i++ {
			w = w.Next()
		}
		if !w.Start.Equal(day(2025, 1, 31)) {
			t.Fatalf("start after 3 advances = %v, want today+21", w.Start)
		}
		if again := w.Next(); !again.Start.Equal(w.Start) {
			t.Errorf("advancing past the horizon must be a no-op, got %v", again.Start)
		}
		last := w.Days()[6]
		if !last.Equal(day(2025, 2, 6)) {
			t.Errorf("last visible day = %v, want today+27", last)
		}
	})

	t.Run("prev clamps to today", func(t *testing.T) {
		w := NewWindow(today, today).Next().Prev().Prev()
		if !w.Start.Equal(day(2025, 1, 10)) {
			t.Errorf("start = %v, want today", w.Start)
		}
	})

	t.Run("days are consecutive", func(t *testing.T) {
		w := NewWindow(today, today)
		days := w.Days()
		for i := 1; i < len(days); i++ {
			if !days[i].Equal(days[i-1].AddDate(0, 0, 1)) {
				t.Fatalf("days not consecutive at %d: %v -> %v", i, days[i-1], days[i])
			}
		}
	})
}
