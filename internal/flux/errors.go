package flux

import (
	"errors"
	"fmt"
)

// Sentinel errors for the flux package.
var (
	// ErrDispatchInProgress is returned when Dispatch is called while another
	// dispatch is still running its callbacks. This is a programming error.
	ErrDispatchInProgress = errors.New("cannot dispatch in the middle of a dispatch")

	// ErrInvalidAction is returned for nil or malformed actions.
	ErrInvalidAction = errors.New("invalid action")

	// ErrLoopStopped is returned when posting to a stopped loop.
	ErrLoopStopped = errors.New("event loop is stopped")

	// ErrLoopRunning is returned when Run is called on a loop that is already running.
	ErrLoopRunning = errors.New("event loop is already running")

	// ErrQueueFull is returned when the loop task queue cannot accept more tasks.
	ErrQueueFull = errors.New("event loop queue is full")

	// ErrTaskPanicked is returned by Loop.Do when the task panicked.
	ErrTaskPanicked = errors.New("event loop task panicked")

	// ErrNoLoop is returned by EmitDefer on an emitter created without a loop.
	ErrNoLoop = errors.New("emitter has no event loop")
)

// ListenerPanicError records a listener that panicked during Emit.
type ListenerPanicError struct {
	Event string
	ID    ListenerID
	Value any
	Stack []byte
}

func (e *ListenerPanicError) Error() string {
	return fmt.Sprintf("listener %d for %q panicked: %v", e.ID, e.Event, e.Value)
}
