package selection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fieldbook/internal/models"
)

func slot(d int, hour int) models.Slot {
	return models.Slot{Date: time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC), StartHour: hour}
}

func TestToggleRoundTrip(t *testing.T) {
	m := NewManager()
	s := slot(10, 14)

	assert.NoError(t, m.Toggle(s, models.StatusAvailable, 250))
	assert.Equal(t, 1, m.Len())
	assert.True(t, m.Contains(s.Key()))

	// Second toggle removes; classification no longer matters for removal.
	assert.NoError(t, m.Toggle(s, models.StatusSelected, 250))
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Contains(s.Key()))
}

func TestToggleRejectsNonAvailable(t *testing.T) {
	m := NewManager()

	for _, status := range []models.SlotStatus{
		models.StatusOutsideHours,
		models.StatusPast,
		models.StatusBooked,
		models.StatusPending,
	} {
		err := m.Toggle(slot(12, 14), status, 250)
		assert.ErrorIs(t, err, ErrSlotUnavailable, "status %s", status)
		assert.Equal(t, 0, m.Len(), "selection must stay unchanged for %s", status)
	}
}

func TestPriceFrozenAtSelection(t *testing.T) {
	m := NewManager()
	assert.NoError(t, m.Toggle(slot(10, 9), models.StatusAvailable, 300))
	assert.NoError(t, m.Toggle(slot(10, 10), models.StatusAvailable, 350)) // rate changed

	slots := m.Slots()
	assert.Equal(t, 300.0, slots[0].Price)
	assert.Equal(t, 350.0, slots[1].Price)
	assert.Equal(t, 650.0, m.Total())
}

func TestClear(t *testing.T) {
	m := NewManager()
	assert.NoError(t, m.Toggle(slot(10, 9), models.StatusAvailable, 100))
	assert.NoError(t, m.Toggle(slot(11, 9), models.StatusAvailable, 100))

	m.Clear()
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Slots())
	assert.False(t, m.Contains(slot(10, 9).Key()))
}

func TestGroupByDate(t *testing.T) {
	m := NewManager()
	assert.NoError(t, m.Toggle(slot(11, 15), models.StatusAvailable, 100))
	assert.NoError(t, m.Toggle(slot(10, 10), models.StatusAvailable, 100))
	assert.NoError(t, m.Toggle(slot(10, 9), models.StatusAvailable, 100))

	groups := m.GroupByDate()
	assert.Len(t, groups, 2)
	assert.Equal(t, "2025-01-10", groups[0].Date)
	assert.Equal(t, 9, groups[0].Slots[0].Slot.StartHour)
	assert.Equal(t, 10, groups[0].Slots[1].Slot.StartHour)
	assert.Equal(t, "2025-01-11", groups[1].Date)
}
