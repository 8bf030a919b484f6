package flux

import (
	"errors"
	"runtime/debug"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
)

// Listener receives the arguments passed to Emit.
type Listener func(args ...any)

// ListenerID identifies one registration made with On.
// Go funcs are not comparable, so removal is by ID rather than by func.
type ListenerID uint64

type registration struct {
	id ListenerID
	fn Listener
}

// Emitter is a named-event publish/subscribe primitive.
//
// Registering the same func twice creates two registrations and the func is
// invoked twice per emission.
type Emitter struct {
	loop *Loop

	mu        sync.Mutex
	nextID    ListenerID
	listeners map[string][]registration
}

// NewEmitter creates an emitter. loop is used by EmitDefer and may be nil
// if deferred emission is not needed.
func NewEmitter(loop *Loop) *Emitter {
	return &Emitter{
		loop:      loop,
		listeners: make(map[string][]registration),
	}
}

// On registers fn for event and returns its registration ID.
// A nil fn is ignored and returns 0.
func (e *Emitter) On(event string, fn Listener) ListenerID {
	if fn == nil {
		return 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	e.listeners[event] = append(e.listeners[event], registration{id: id, fn: fn})
	return id
}

// RemoveListener removes the registration with the given ID.
// Unknown IDs are ignored.
func (e *Emitter) RemoveListener(event string, id ListenerID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	regs := e.listeners[event]
	i := slices.IndexFunc(regs, func(r registration) bool { return r.id == id })
	if i < 0 {
		return
	}

	regs = slices.Delete(slices.Clone(regs), i, i+1)
	if len(regs) == 0 {
		delete(e.listeners, event)
		return
	}
	e.listeners[event] = regs
}

// ListenerCount returns the number of registrations for event.
func (e *Emitter) ListenerCount(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[event])
}

// Emit calls every listener registered for event when Emit starts, in
// registration order, in the calling goroutine. A panicking listener does not
// stop the others; its panic is returned as a *ListenerPanicError.
func (e *Emitter) Emit(event string, args ...any) error {
	e.mu.Lock()
	regs := slices.Clone(e.listeners[event])
	e.mu.Unlock()

	var errs []error
	for _, reg := range regs {
		if err := invoke(event, reg, args); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EmitDefer posts the emission to the loop so it runs after the current
// task completes. It is called from loop tasks, so it cannot wait for queue
// space: when the queue is full the emission is dropped and ErrQueueFull is
// returned. Size the queue with WithQueueSize for the expected burst.
func (e *Emitter) EmitDefer(event string, args ...any) error {
	if e.loop == nil {
		return ErrNoLoop
	}

	return e.loop.Post(func() {
		if err := e.Emit(event, args...); err != nil {
			log.Error().Err(err).Str("event", event).Msg("Listener failed during deferred emit")
		}
	})
}

func invoke(event string, reg registration, args []any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ListenerPanicError{
				Event: event,
				ID:    reg.id,
				Value: r,
				Stack: debug.Stack(),
			}
		}
	}()

	reg.fn(args...)
	return nil
}
