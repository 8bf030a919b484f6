package flux

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/cloudconsole/internal/action"
	"github.com/wolfeidau/cloudconsole/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Callback receives every dispatched action.
type Callback func(action.Action)

// Token identifies a registered callback.
type Token string

// State is the dispatcher state. The only transitions are
// Idle -> Dispatching on Dispatch and Dispatching -> Idle when it returns.
type State int32

const (
	StateIdle State = iota
	StateDispatching
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatching:
		return "dispatching"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

type registeredCallback struct {
	token Token
	fn    Callback
}

// Dispatcher delivers each action to every registered callback, in
// registration order, synchronously. There is one dispatcher per console
// process; it is passed to stores explicitly rather than held in a global.
type Dispatcher struct {
	state atomic.Int32

	mu        sync.Mutex
	callbacks []registeredCallback

	metrics *telemetry.Metrics
}

// NewDispatcher creates an idle dispatcher with no callbacks.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		metrics: telemetry.GetMetrics(),
	}
}

// Register adds fn to the end of the callback list.
func (d *Dispatcher) Register(fn Callback) Token {
	token := Token(uuid.Must(uuid.NewV7()).String())

	d.mu.Lock()
	defer d.mu.Unlock()

	d.callbacks = append(d.callbacks, registeredCallback{token: token, fn: fn})
	return token
}

// Unregister removes the callback registered under token.
// Unknown tokens are ignored.
func (d *Dispatcher) Unregister(token Token) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callbacks = slices.DeleteFunc(slices.Clone(d.callbacks), func(c registeredCallback) bool {
		return c.token == token
	})
}

// State returns the current dispatcher state.
func (d *Dispatcher) State() State {
	return State(d.state.Load())
}

// IsDispatching returns true while callbacks are running.
func (d *Dispatcher) IsDispatching() bool {
	return d.State() == StateDispatching
}

// Dispatch runs every callback registered when the dispatch starts.
//
// Returns ErrInvalidAction for nil or malformed actions and
// ErrDispatchInProgress if another dispatch is running. If a callback panics
// the dispatcher returns to Idle and the panic continues up the stack.
func (d *Dispatcher) Dispatch(a action.Action) error {
	ctx := context.Background()

	if a == nil {
		d.metrics.DispatchRejectedTotal.Add(ctx, 1)
		return fmt.Errorf("%w: nil action", ErrInvalidAction)
	}

	attrs := metric.WithAttributes(attribute.String("kind", a.Kind().String()))

	if err := a.Validate(); err != nil {
		d.metrics.DispatchRejectedTotal.Add(ctx, 1, attrs)
		return fmt.Errorf("%w: %w", ErrInvalidAction, err)
	}

	if !d.state.CompareAndSwap(int32(StateIdle), int32(StateDispatching)) {
		d.metrics.DispatchRejectedTotal.Add(ctx, 1, attrs)
		log.Error().Str("kind", a.Kind().String()).Msg("Rejected re-entrant dispatch")
		return fmt.Errorf("%w: %s", ErrDispatchInProgress, a.Kind())
	}
	defer d.state.Store(int32(StateIdle))

	d.mu.Lock()
	callbacks := slices.Clone(d.callbacks)
	d.mu.Unlock()

	started := time.Now()
	for _, cb := range callbacks {
		cb.fn(a)
	}

	d.metrics.DispatchTotal.Add(ctx, 1, attrs)
	d.metrics.DispatchDuration.Record(ctx, float64(time.Since(started).Microseconds())/1000, attrs)

	log.Debug().
		Str("kind", a.Kind().String()).
		Int("callbacks", len(callbacks)).
		Dur("duration", time.Since(started)).
		Msg("Dispatched action")

	return nil
}
