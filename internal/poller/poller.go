// Package poller watches a created order until its payment completes. It is
// a small state machine: Idle -> Polling -> Confirmed | Stopped. At most one
// loop runs per poller; starting a new order first tears the old loop down,
// and no tick fires after the owning context is gone.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"fieldbook/internal/events"
	"fieldbook/internal/metrics"
	"fieldbook/internal/models"
)

// State of the poller.
type State string

const (
	StateIdle      State = "idle"
	StatePolling   State = "polling"
	StateConfirmed State = "confirmed"
	StateStopped   State = "stopped"
)

var (
	// ErrEmptyOrderID rejects polling without an order to watch.
	ErrEmptyOrderID = errors.New("order id is empty")
	// ErrAlreadyConfirmed refuses to restart polling once the flow reached
	// confirmation.
	ErrAlreadyConfirmed = errors.New("payment already confirmed")
)

// StatusClient reads an order's current status.
type StatusClient interface {
	OrderStatus(ctx context.Context, orderID string) (string, error)
}

// Ticker abstracts the poll schedule so tests can drive ticks manually.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory builds a ticker for a poll interval.
type TickerFactory func(d time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

func newRealTicker(d time.Duration) Ticker { return realTicker{t: time.NewTicker(d)} }

// DefaultInterval between status checks.
const DefaultInterval = 2 * time.Second

// Poller polls one order at a time.
type Poller struct {
	api       StatusClient
	interval  time.Duration
	terminal  string
	newTicker TickerFactory
	bus       *events.Bus
	log       zerolog.Logger

	mu      sync.Mutex
	state   State
	orderID string
	loop    *loop
}

// loop is one polling run; stopOnce makes Stop idempotent.
type loop struct {
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func (l *loop) stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
	<-l.done
}

// Option configures a poller.
type Option func(*Poller)

// WithInterval overrides the poll interval.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

// WithTerminalStatus overrides the status value treated as payment completion.
func WithTerminalStatus(status string) Option {
	return func(p *Poller) { p.terminal = status }
}

// WithTickerFactory injects the poll schedule; tests use a manual ticker.
func WithTickerFactory(f TickerFactory) Option {
	return func(p *Poller) { p.newTicker = f }
}

// WithBus publishes confirmation and stop events.
func WithBus(bus *events.Bus) Option {
	return func(p *Poller) { p.bus = bus }
}

// New creates an idle poller.
func New(api StatusClient, logger zerolog.Logger, opts ...Option) *Poller {
	p := &Poller{
		api:       api,
		interval:  DefaultInterval,
		terminal:  models.OrderCompleted,
		newTicker: newRealTicker,
		log:       logger,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins polling orderID. Any previous loop is stopped and drained
// before the new one is armed, so at most one loop is ever active. Starting
// is refused once the poller reached Confirmed.
func (p *Poller) Start(ctx context.Context, orderID string) error {
	if orderID == "" {
		return ErrEmptyOrderID
	}

	p.mu.Lock()
	if p.state == StateConfirmed {
		p.mu.Unlock()
		return ErrAlreadyConfirmed
	}
	prev := p.loop
	p.mu.Unlock()

	if prev != nil {
		prev.stop()
	}

	p.mu.Lock()
	if p.state == StateConfirmed {
		p.mu.Unlock()
		return ErrAlreadyConfirmed
	}
	l := &loop{stopCh: make(chan struct{}), done: make(chan struct{})}
	p.loop = l
	p.orderID = orderID
	p.state = StatePolling
	p.mu.Unlock()

	p.log.Debug().Str("order_id", orderID).Dur("interval", p.interval).Msg("payment polling started")
	go p.run(ctx, orderID, l)
	return nil
}

func (p *Poller) run(ctx context.Context, orderID string, l *loop) {
	defer close(l.done)

	ticker := p.newTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.setState(StateStopped)
			p.log.Debug().Str("order_id", orderID).Msg("payment polling cancelled")
			return
		case <-l.stopCh:
			p.setState(StateStopped)
			return
		case <-ticker.C():
			status, err := p.api.OrderStatus(ctx, orderID)
			metrics.IncPollTick()
			if err != nil {
				// A failed check is indistinguishable from "not yet complete";
				// halt rather than retry forever and let the user re-trigger.
				p.setState(StateStopped)
				p.log.Warn().Err(err).Str("order_id", orderID).Msg("payment polling stopped on error")
				if p.bus != nil {
					p.bus.Publish(events.Event{Type: events.PollStopped, OrderID: orderID})
				}
				return
			}
			if status == p.terminal {
				p.setState(StateConfirmed)
				metrics.IncPaymentConfirmed()
				p.log.Info().Str("order_id", orderID).Msg("payment confirmed")
				if p.bus != nil {
					p.bus.Publish(events.Event{Type: events.OrderConfirmed, OrderID: orderID})
				}
				return
			}
			// Unknown statuses are treated as not-yet-complete; keep polling.
		}
	}
}

// Stop halts the active loop. Safe to call in any state; no tick fires after
// Stop returns.
func (p *Poller) Stop() {
	p.mu.Lock()
	l := p.loop
	p.mu.Unlock()

	if l != nil {
		l.stop()
	}
}

// State returns the poller's current state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// OrderID returns the order the poller last watched.
func (p *Poller) OrderID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.orderID
}

// Done exposes the active loop's completion channel; nil before any Start.
func (p *Poller) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loop == nil {
		return nil
	}
	return p.loop.done
}

func (p *Poller) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}
