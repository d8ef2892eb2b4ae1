// Package lifecycle governs an already-confirmed booking on the dashboard:
// the cancellation request/withdraw flow, completion, feedback, and deletion
// from the customer's history.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// State of a dashboard booking.
type State string

const (
	StateConfirmed State = "confirmed"
	StatePending   State = "pending" // cancellation requested, awaiting owner
	StateCancelled State = "cancelled"
	StateCompleted State = "completed"
)

var (
	ErrInvalidTransition = errors.New("transition not allowed")
	ErrNotConfirmed      = errors.New("action was not confirmed by the user")
	ErrNotCompleted      = errors.New("feedback is only allowed on completed bookings")
	ErrNoFeedback        = errors.New("no feedback to remove")
	ErrNotDeletable      = errors.New("only cancelled or completed bookings can be deleted")
	ErrRating            = errors.New("rating must be between 1 and 5")
)

// Feedback is the single review a completed booking may carry.
type Feedback struct {
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Booking is a persisted reservation shown on the dashboard.
type Booking struct {
	ID        string
	SubCourt  string
	StartTime time.Time
	EndTime   time.Time
	State     State
	Feedback  *Feedback
}

// FSM holds the allowed transitions.
type FSM struct {
	transitions map[State][]State
}

// NewFSM creates the booking lifecycle FSM. confirmed->cancelled and
// pending->cancelled are owner decisions, confirmed->completed is
// time-driven; both arrive as external transitions, never client-initiated.
func NewFSM() *FSM {
	return &FSM{
		transitions: map[State][]State{
			StateConfirmed: {StatePending, StateCancelled, StateCompleted},
			StatePending:   {StateConfirmed, StateCancelled},
			StateCancelled: {},
			StateCompleted: {},
		},
	}
}

// CanTransition checks if the transition is allowed.
func (f *FSM) CanTransition(from, to State) bool {
	allowed, ok := f.transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// API is the remote surface for the cancellation flow.
type API interface {
	RequestCancellation(ctx context.Context, bookingID string) error
	WithdrawCancellation(ctx context.Context, bookingID string) error
}

// Confirmer gates every user-initiated transition behind an explicit
// confirmation step; all of them are irreversible or carry real-world
// consequence.
type Confirmer interface {
	Confirm(action string) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(action string) bool

// Confirm implements Confirmer.
func (f ConfirmerFunc) Confirm(action string) bool { return f(action) }

// Manager drives lifecycle actions for dashboard bookings.
type Manager struct {
	api     API
	fsm     *FSM
	confirm Confirmer
	now     func() time.Time
	log     zerolog.Logger
}

// NewManager creates a lifecycle manager. now is injectable; nil means the
// real clock.
func NewManager(api API, confirm Confirmer, logger zerolog.Logger, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{api: api, fsm: NewFSM(), confirm: confirm, now: now, log: logger}
}

// RequestCancellation asks the owner to cancel a confirmed booking. The
// booking moves to pending; the actual cancellation is the owner's decision.
func (m *Manager) RequestCancellation(ctx context.Context, b *Booking) error {
	if !m.fsm.CanTransition(b.State, StatePending) || b.State != StateConfirmed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.State, StatePending)
	}
	if !m.confirm.Confirm("request cancellation") {
		return ErrNotConfirmed
	}
	if err := m.api.RequestCancellation(ctx, b.ID); err != nil {
		return fmt.Errorf("request cancellation: %w", err)
	}
	b.State = StatePending
	m.log.Info().Str("booking_id", b.ID).Msg("cancellation requested")
	return nil
}

// WithdrawCancellation retracts the customer's own pending cancellation
// request, returning the booking to confirmed.
func (m *Manager) WithdrawCancellation(ctx context.Context, b *Booking) error {
	if b.State != StatePending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.State, StateConfirmed)
	}
	if !m.confirm.Confirm("withdraw cancellation request") {
		return ErrNotConfirmed
	}
	if err := m.api.WithdrawCancellation(ctx, b.ID); err != nil {
		return fmt.Errorf("withdraw cancellation: %w", err)
	}
	b.State = StateConfirmed
	m.log.Info().Str("booking_id", b.ID).Msg("cancellation request withdrawn")
	return nil
}

// ApplyExternal applies a server-driven transition (owner decision or
// time-based completion). Not confirmation-gated: it is not a user action.
func (m *Manager) ApplyExternal(b *Booking, to State) error {
	if !m.fsm.CanTransition(b.State, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.State, to)
	}
	b.State = to
	return nil
}

// SetFeedback creates the booking's feedback or, if one already exists,
// edits it in place. A booking never carries more than one review.
func (m *Manager) SetFeedback(b *Booking, rating int, comment string) error {
	if b.State != StateCompleted {
		return ErrNotCompleted
	}
	if rating < 1 || rating > 5 {
		return ErrRating
	}
	now := m.now()
	if b.Feedback != nil {
		b.Feedback.Rating = rating
		b.Feedback.Comment = comment
		b.Feedback.UpdatedAt = now
		return nil
	}
	b.Feedback = &Feedback{Rating: rating, Comment: comment, CreatedAt: now, UpdatedAt: now}
	return nil
}

// RemoveFeedback deletes the booking's feedback.
func (m *Manager) RemoveFeedback(b *Booking) error {
	if b.State != StateCompleted {
		return ErrNotCompleted
	}
	if b.Feedback == nil {
		return ErrNoFeedback
	}
	b.Feedback = nil
	return nil
}

// CanDelete reports whether the booking may be removed from the customer's
// history view.
func (m *Manager) CanDelete(b *Booking) bool {
	return b.State == StateCancelled || b.State == StateCompleted
}

// Delete gates a history deletion behind confirmation. The caller removes the
// record from its own store on success.
func (m *Manager) Delete(b *Booking) error {
	if !m.CanDelete(b) {
		return ErrNotDeletable
	}
	if !m.confirm.Confirm("delete booking from history") {
		return ErrNotConfirmed
	}
	return nil
}
