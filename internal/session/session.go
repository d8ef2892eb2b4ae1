// Package session owns the per-wizard booking state: the active facility and
// sub-court, the fetched bookings for that sub-court, the selection set, and
// the visible week window. Switching context clears everything synchronously
// and bumps an epoch so a slow response for the old sub-court can never
// repopulate state for the new one.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"fieldbook/internal/grid"
	"fieldbook/internal/metrics"
	"fieldbook/internal/models"
	"fieldbook/internal/selection"
)

// ErrNoSubCourt is returned by operations that need an active sub-court.
var ErrNoSubCourt = errors.New("no active sub-court")

// BookingFetcher fetches the existing bookings for a sub-court.
type BookingFetcher interface {
	BookingsForSubCourt(ctx context.Context, subCourtID int64) ([]models.ExistingBooking, error)
}

// Session is one wizard run.
type Session struct {
	api     BookingFetcher
	builder *grid.Builder
	log     zerolog.Logger

	mu       sync.Mutex
	facility *models.Facility
	subCourt *models.SubCourt
	epoch    uint64

	bookings  grid.BookingIndex
	selection *selection.Manager
	window    grid.Window
}

// New creates a session. now is injectable for tests; nil means the real
// clock.
func New(api BookingFetcher, logger zerolog.Logger, now func() time.Time) *Session {
	b := grid.NewBuilder(now)
	return &Session{
		api:       api,
		builder:   b,
		log:       logger,
		bookings:  grid.BookingIndex{},
		selection: selection.NewManager(),
		window:    grid.NewWindow(b.Now(), b.Now()),
	}
}

// SetContext activates a facility and sub-court. The selection set and the
// previously fetched bookings are cleared before this returns, and the fetch
// epoch advances so in-flight responses for the old context are discarded.
func (s *Session) SetContext(facility models.Facility, subCourt models.SubCourt) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.facility = &facility
	s.subCourt = &subCourt
	s.epoch++
	s.selection.Clear()
	s.bookings = grid.BookingIndex{}
	s.window = grid.NewWindow(s.builder.Now(), s.builder.Now())
	s.log.Debug().
		Int64("facility_id", facility.ID).
		Int64("sub_court_id", subCourt.ID).
		Uint64("epoch", s.epoch).
		Msg("booking context switched")
}

// LeaveSlotStep clears the selection when the wizard navigates backward past
// slot selection.
func (s *Session) LeaveSlotStep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Clear()
}

// RefreshBookings fetches the existing bookings for the active sub-court. The
// result is applied only if the context has not changed while the fetch was
// in flight; a late response for a superseded sub-court is dropped silently.
func (s *Session) RefreshBookings(ctx context.Context) error {
	s.mu.Lock()
	if s.subCourt == nil {
		s.mu.Unlock()
		return ErrNoSubCourt
	}
	epoch := s.epoch
	subCourtID := s.subCourt.ID
	s.mu.Unlock()

	bookings, err := s.api.BookingsForSubCourt(ctx, subCourtID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		metrics.IncStaleResponse()
		s.log.Debug().
			Int64("sub_court_id", subCourtID).
			Uint64("fetch_epoch", epoch).
			Uint64("current_epoch", s.epoch).
			Msg("discarded stale bookings response")
		return nil
	}

	s.bookings = grid.IndexBookings(subCourtID, bookings)
	return nil
}

// Classify returns the current classification of a slot for the active
// sub-court.
func (s *Session) Classify(slot models.Slot) (models.SlotStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classifyLocked(slot)
}

func (s *Session) classifyLocked(slot models.Slot) (models.SlotStatus, error) {
	if s.facility == nil {
		return "", ErrNoSubCourt
	}
	return s.builder.Classify(s.facility.OpenHour, s.facility.CloseHour, slot, s.bookings, s.selection), nil
}

// Toggle flips the slot in the selection set, refusing slots that do not
// currently classify as available. The facility's hourly rate is frozen onto
// the slot at this moment.
func (s *Session) Toggle(slot models.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.classifyLocked(slot)
	if err != nil {
		return err
	}
	return s.selection.Toggle(slot, status, s.facility.HourlyPrice)
}

// Selection exposes the selection set for submission and display.
func (s *Session) Selection() *selection.Manager { return s.selection }

// SubCourtID returns the active sub-court id, or 0 when none is set.
func (s *Session) SubCourtID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subCourt == nil {
		return 0
	}
	return s.subCourt.ID
}

// WeekGrid classifies the currently visible week.
func (s *Session) WeekGrid() (grid.WeekGrid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.facility == nil {
		return grid.WeekGrid{}, ErrNoSubCourt
	}
	return s.builder.BuildWeek(s.facility.OpenHour, s.facility.CloseHour, s.window, s.bookings, s.selection), nil
}

// NextWeek advances the window; past the 4-week horizon it is a no-op.
func (s *Session) NextWeek() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window = s.window.Next()
}

// PrevWeek retreats the window, clamping at today.
func (s *Session) PrevWeek() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window = s.window.Prev()
}

// Window returns the current visible window.
func (s *Session) Window() grid.Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window
}
