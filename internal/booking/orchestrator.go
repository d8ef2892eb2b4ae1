// Package booking turns a slot selection into a payable order: one atomic
// multi-slot booking call, then one payment call, strictly in that sequence.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"fieldbook/internal/events"
	"fieldbook/internal/metrics"
	"fieldbook/internal/models"
	"fieldbook/internal/selection"
)

var (
	// ErrEmptySelection rejects a submit before any network call is made.
	ErrEmptySelection = errors.New("selection is empty")
	// ErrSubmitInFlight guards against double submission; a second submit for
	// the same orchestrator while one is running would create a second,
	// independent set of bookings server-side.
	ErrSubmitInFlight = errors.New("a submission is already in flight")
)

// PartialFlowError reports a payment-creation failure after bookings were
// already created. The booking ids are orphaned from the client's point of
// view; cleanup is a server-side concern.
type PartialFlowError struct {
	BookingIDs []string
	Err        error
}

func (e *PartialFlowError) Error() string {
	return fmt.Sprintf("payment creation failed after %d bookings were created: %v", len(e.BookingIDs), e.Err)
}

func (e *PartialFlowError) Unwrap() error { return e.Err }

// API is the remote collaborator surface the orchestrator needs.
type API interface {
	CreateBookings(ctx context.Context, subCourtID int64, startTimes []time.Time) ([]string, error)
	CreatePayment(ctx context.Context, bookingIDs []string) (*models.PaymentIntent, error)
}

// Result is a successful submission: the created bookings and the payable
// order.
type Result struct {
	BookingIDs []string
	Payment    models.PaymentIntent
}

// Orchestrator submits selections. One per wizard session.
type Orchestrator struct {
	api      API
	bus      *events.Bus
	log      zerolog.Logger
	inFlight atomic.Bool
}

// NewOrchestrator creates an orchestrator. bus may be nil.
func NewOrchestrator(a API, bus *events.Bus, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{api: a, bus: bus, log: logger}
}

// Submit creates one booking per selected slot in a single call, then one
// order aggregating them. Booking creation must succeed before payment
// creation is attempted; the two calls are never issued concurrently. Submit
// is not idempotent, so a second call while one is running is refused.
func (o *Orchestrator) Submit(ctx context.Context, slots []selection.SelectedSlot, subCourtID int64) (*Result, error) {
	if len(slots) == 0 {
		metrics.IncSubmission("rejected")
		return nil, ErrEmptySelection
	}
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmitInFlight
	}
	defer o.inFlight.Store(false)

	startTimes := make([]time.Time, 0, len(slots))
	slotKeys := make([]string, 0, len(slots))
	for _, s := range slots {
		startTimes = append(startTimes, s.Slot.StartTime())
		slotKeys = append(slotKeys, s.Slot.Key())
	}

	bookingIDs, err := o.api.CreateBookings(ctx, subCourtID, startTimes)
	if err != nil {
		metrics.IncSubmission("booking_failed")
		o.log.Error().Err(err).Int64("sub_court_id", subCourtID).Int("slots", len(slots)).
			Msg("booking creation failed")
		return nil, fmt.Errorf("create bookings: %w", err)
	}

	intent, err := o.api.CreatePayment(ctx, bookingIDs)
	if err != nil {
		metrics.IncSubmission("payment_failed")
		o.log.Error().Err(err).Strs("booking_ids", bookingIDs).
			Msg("payment creation failed, bookings orphaned")
		return nil, &PartialFlowError{BookingIDs: bookingIDs, Err: err}
	}

	metrics.IncSubmission("ok")
	o.log.Info().
		Str("order_id", intent.OrderID).
		Int("slots", len(slots)).
		Float64("amount", intent.Amount).
		Msg("booking submitted")

	if o.bus != nil {
		// The server's amount is authoritative; locally summed prices may lag
		// a price change.
		o.bus.Publish(events.Event{
			Type:       events.OrderSubmitted,
			OrderID:    intent.OrderID,
			SubCourtID: subCourtID,
			SlotKeys:   slotKeys,
			Amount:     intent.Amount,
		})
	}

	return &Result{BookingIDs: bookingIDs, Payment: *intent}, nil
}
