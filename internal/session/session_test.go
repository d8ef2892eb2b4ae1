package session

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"fieldbook/internal/models"
)

type fakeFetcher struct {
	bookings []models.ExistingBooking
	err      error
	calls    int
	// onFetch runs while the fetch is "in flight", before the response is
	// applied; used to simulate a context switch racing a slow response.
	onFetch func()
}

func (f *fakeFetcher) BookingsForSubCourt(ctx context.Context, subCourtID int64) ([]models.ExistingBooking, error) {
	f.calls++
	if f.onFetch != nil {
		f.onFetch()
	}
	return f.bookings, f.err
}

var (
	facility = models.Facility{ID: 1, Name: "Arena One", OpenHour: 9, CloseHour: 17, HourlyPrice: 250}
	courtA   = models.SubCourt{ID: 7, FacilityID: 1, Name: "Court A"}
	courtB   = models.SubCourt{ID: 8, FacilityID: 1, Name: "Court B"}
)

func newTestSession(f *fakeFetcher) *Session {
	now := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	return New(f, zerolog.Nop(), func() time.Time { return now })
}

func TestSwitchSubCourtClearsState(t *testing.T) {
	f := &fakeFetcher{bookings: []models.ExistingBooking{
		{SubCourtID: 7, StartTime: time.Date(2025, 1, 12, 14, 0, 0, 0, time.UTC), Status: models.BookingConfirmed},
	}}
	s := newTestSession(f)
	s.SetContext(facility, courtA)
	assert.NoError(t, s.RefreshBookings(context.Background()))

	slot := models.Slot{Date: time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC), StartHour: 10}
	assert.NoError(t, s.Toggle(slot))
	assert.Equal(t, 1, s.Selection().Len())

	// Switching sub-court must empty both the selection and the booking set
	// before any new fetch completes.
	s.SetContext(facility, courtB)
	assert.Equal(t, 0, s.Selection().Len())

	booked := models.Slot{Date: time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC), StartHour: 14}
	status, err := s.Classify(booked)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, status, "old sub-court's bookings must not survive the switch")
}

func TestStaleResponseDiscarded(t *testing.T) {
	f := &fakeFetcher{bookings: []models.ExistingBooking{
		{SubCourtID: 7, StartTime: time.Date(2025, 1, 12, 14, 0, 0, 0, time.UTC), Status: models.BookingConfirmed},
	}}
	s := newTestSession(f)
	s.SetContext(facility, courtA)

	// The context switches to court B while court A's response is in flight.
	f.onFetch = func() { s.SetContext(facility, courtB) }
	assert.NoError(t, s.RefreshBookings(context.Background()))

	booked := models.Slot{Date: time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC), StartHour: 14}
	status, err := s.Classify(booked)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, status, "stale response must be dropped, not applied")
}

func TestToggleDefendsAgainstBookedSlot(t *testing.T) {
	f := &fakeFetcher{bookings: []models.ExistingBooking{
		{SubCourtID: 7, StartTime: time.Date(2025, 1, 12, 14, 0, 0, 0, time.UTC), Status: models.BookingConfirmed},
	}}
	s := newTestSession(f)
	s.SetContext(facility, courtA)
	assert.NoError(t, s.RefreshBookings(context.Background()))

	booked := models.Slot{Date: time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC), StartHour: 14}
	assert.Error(t, s.Toggle(booked))
	assert.Equal(t, 0, s.Selection().Len())

	outside := models.Slot{Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), StartHour: 8}
	assert.Error(t, s.Toggle(outside))
	assert.Equal(t, 0, s.Selection().Len())
}

func TestRefreshWithoutContext(t *testing.T) {
	s := newTestSession(&fakeFetcher{})
	assert.ErrorIs(t, s.RefreshBookings(context.Background()), ErrNoSubCourt)
}

func TestLeaveSlotStepClearsSelection(t *testing.T) {
	s := newTestSession(&fakeFetcher{})
	s.SetContext(facility, courtA)

	slot := models.Slot{Date: time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC), StartHour: 10}
	assert.NoError(t, s.Toggle(slot))
	assert.Equal(t, 1, s.Selection().Len())

	s.LeaveSlotStep()
	assert.Equal(t, 0, s.Selection().Len())
}

func TestPriceFrozenAgainstFacilityChange(t *testing.T) {
	s := newTestSession(&fakeFetcher{})
	s.SetContext(facility, courtA)

	slot := models.Slot{Date: time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC), StartHour: 10}
	assert.NoError(t, s.Toggle(slot))

	slots := s.Selection().Slots()
	assert.Equal(t, 250.0, slots[0].Price)
}
