// Package selection holds the customer's in-progress choice of slots for the
// active sub-court. The manager is session-scoped, never a singleton, so the
// clearing-on-context-switch rule can be enforced by its owner.
package selection

import (
	"errors"
	"sort"

	"fieldbook/internal/models"
)

// ErrSlotUnavailable is returned when a toggle targets a slot that does not
// currently classify as available. The UI should never offer the affordance;
// the manager refuses regardless.
var ErrSlotUnavailable = errors.New("slot is not available for selection")

// SelectedSlot is a chosen slot with the price frozen at selection time.
// Later facility price changes do not touch it.
type SelectedSlot struct {
	Slot  models.Slot
	Price float64
}

// Manager is the selection set. Insertion order is kept for display.
type Manager struct {
	order []string
	slots map[string]SelectedSlot
}

// NewManager returns an empty selection set.
func NewManager() *Manager {
	return &Manager{slots: make(map[string]SelectedSlot)}
}

// Toggle removes the slot if it is already selected, otherwise adds it.
// status must be the slot's current grid classification; adding is refused
// unless it is available. price is the facility's current hourly rate, copied
// onto the slot.
func (m *Manager) Toggle(slot models.Slot, status models.SlotStatus, price float64) error {
	key := slot.Key()
	if _, ok := m.slots[key]; ok {
		delete(m.slots, key)
		for i, k := range m.order {
			if k == key {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
		return nil
	}
	if status != models.StatusAvailable {
		return ErrSlotUnavailable
	}
	m.slots[key] = SelectedSlot{Slot: slot, Price: price}
	m.order = append(m.order, key)
	return nil
}

// Clear empties the selection. Must be called on any facility or sub-court
// switch and on backward navigation past the slot-selection step.
func (m *Manager) Clear() {
	m.order = m.order[:0]
	m.slots = make(map[string]SelectedSlot)
}

// Contains reports whether the slot key is selected. Satisfies grid.Selection.
func (m *Manager) Contains(key string) bool {
	_, ok := m.slots[key]
	return ok
}

// Len returns the number of selected slots.
func (m *Manager) Len() int { return len(m.order) }

// Slots returns the selected slots in the order they were chosen.
func (m *Manager) Slots() []SelectedSlot {
	out := make([]SelectedSlot, 0, len(m.order))
	for _, key := range m.order {
		out = append(out, m.slots[key])
	}
	return out
}

// Total sums the frozen prices of the selection.
func (m *Manager) Total() float64 {
	var total float64
	for _, s := range m.slots {
		total += s.Price
	}
	return total
}

// DateGroup is the selection for one date, hours ascending.
type DateGroup struct {
	Date  string
	Slots []SelectedSlot
}

// GroupByDate groups the selection for display, dates ascending.
func (m *Manager) GroupByDate() []DateGroup {
	byDate := make(map[string][]SelectedSlot)
	for _, s := range m.slots {
		d := s.Slot.Date.Format("2006-01-02")
		byDate[d] = append(byDate[d], s)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	groups := make([]DateGroup, 0, len(dates))
	for _, d := range dates {
		slots := byDate[d]
		sort.Slice(slots, func(i, j int) bool {
			return slots[i].Slot.StartHour < slots[j].Slot.StartHour
		})
		groups = append(groups, DateGroup{Date: d, Slots: slots})
	}
	return groups
}
