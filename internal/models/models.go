// Package models defines the domain types shared across the booking core.
package models

import (
	"fmt"
	"time"
)

// Facility is a venue owning one or more sub-courts. Operating hours are
// [OpenHour, CloseHour) in the facility's local time.
type Facility struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Address     string  `json:"address,omitempty"`
	OpenHour    int     `json:"open_hour"`
	CloseHour   int     `json:"close_hour"`
	HourlyPrice float64 `json:"hourly_price"`
}

// SubCourt is an individually bookable unit within a facility.
type SubCourt struct {
	ID         int64  `json:"id"`
	FacilityID int64  `json:"facility_id"`
	Name       string `json:"name"`
}

// SlotStatus classifies a grid cell. Values are mutually exclusive.
type SlotStatus string

const (
	StatusOutsideHours SlotStatus = "outside_hours"
	StatusPast         SlotStatus = "past"
	StatusBooked       SlotStatus = "booked"
	StatusPending      SlotStatus = "pending"
	StatusSelected     SlotStatus = "selected"
	StatusAvailable    SlotStatus = "available"
)

// Slot is one bookable hour at one sub-court on one date. Date is the civil
// date at midnight; the slot runs [StartHour, StartHour+1).
type Slot struct {
	Date      time.Time `json:"date"`
	StartHour int       `json:"start_hour"`
}

// EndHour returns the exclusive end hour of the slot.
func (s Slot) EndHour() int { return s.StartHour + 1 }

// StartTime returns the absolute start instant of the slot in the date's
// location.
func (s Slot) StartTime() time.Time {
	return time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), s.StartHour, 0, 0, 0, s.Date.Location())
}

// Key returns the slot's identity key, "YYYY-MM-DD-HH:00". The key is derived
// on demand and never stored, so formatting stays in one place.
func (s Slot) Key() string {
	return fmt.Sprintf("%s-%02d:00", s.Date.Format("2006-01-02"), s.StartHour)
}

// SlotKeyFromTime derives a slot key from an absolute timestamp. Used to match
// existing bookings against grid cells.
func SlotKeyFromTime(t time.Time) string {
	return fmt.Sprintf("%s-%02d:00", t.Format("2006-01-02"), t.Hour())
}

// Existing booking statuses as reported by the remote API. Anything else is
// ignored by the grid.
const (
	BookingConfirmed = "CONFIRMED"
	BookingPending   = "PENDING"
)

// ExistingBooking is a reservation already known to the server for one
// sub-court.
type ExistingBooking struct {
	ID         string    `json:"id"`
	SubCourtID int64     `json:"sub_court_id"`
	StartTime  time.Time `json:"start_time"`
	Status     string    `json:"status"`
}

// Order statuses observed while polling for payment completion.
const (
	OrderPending   = "PENDING"
	OrderCompleted = "COMPLETED"
)

// PaymentIntent is the payable order produced by submitting a selection:
// the order to poll plus the QR payload the customer pays against.
type PaymentIntent struct {
	OrderID   string  `json:"order_id"`
	QRPayload string  `json:"qr_payload"`
	Amount    float64 `json:"amount"`
}
