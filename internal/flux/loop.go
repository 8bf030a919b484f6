package flux

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/cloudconsole/internal/telemetry"
)

const defaultQueueSize = 1024

// PanicHandler is called when a loop task panics.
type PanicHandler func(value any, stack []byte)

func defaultPanicHandler(value any, stack []byte) {
	log.Error().
		Interface("panic", value).
		Bytes("stack", stack).
		Msg("Event loop task panicked")
}

// Loop runs posted tasks one at a time on a single goroutine.
//
// Tasks run in the order they were posted. A task is never interleaved with
// another task, so code running on the loop needs no locking.
type Loop struct {
	tasks    chan func()
	done     chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	panicHandler PanicHandler
	metrics      *telemetry.Metrics

	// Stats
	posted   atomic.Uint64
	executed atomic.Uint64
	panicked atomic.Uint64
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithQueueSize sets the task queue size.
func WithQueueSize(size int) LoopOption {
	return func(l *Loop) {
		if size > 0 {
			l.tasks = make(chan func(), size)
		}
	}
}

// WithPanicHandler sets the handler called when a task panics.
func WithPanicHandler(h PanicHandler) LoopOption {
	return func(l *Loop) {
		if h != nil {
			l.panicHandler = h
		}
	}
}

// NewLoop creates a stopped loop. Call Run to start processing tasks.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		tasks:        make(chan func(), defaultQueueSize),
		done:         make(chan struct{}),
		panicHandler: defaultPanicHandler,
		metrics:      telemetry.GetMetrics(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run processes tasks until ctx is cancelled or Stop is called.
// Returns ctx.Err() on cancellation and nil after Stop.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer l.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.tasks:
			l.execute(fn)
		}
	}
}

// Stop stops the loop. Queued tasks that have not started are discarded.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
	})
}

// Post queues fn to run on the loop after every task posted before it.
// It never blocks.
func (l *Loop) Post(fn func()) error {
	if fn == nil {
		return nil
	}

	select {
	case <-l.done:
		return ErrLoopStopped
	default:
	}

	select {
	case l.tasks <- fn:
		l.posted.Add(1)
		return nil
	default:
		l.metrics.LoopQueueRejected.Add(context.Background(), 1)
		return ErrQueueFull
	}
}

// PostWait queues fn like Post but waits for queue space instead of failing
// with ErrQueueFull. It must not be called from the loop goroutine, which is
// the only consumer of the queue.
func (l *Loop) PostWait(ctx context.Context, fn func()) error {
	if fn == nil {
		return nil
	}

	select {
	case <-l.done:
		return ErrLoopStopped
	default:
	}

	select {
	case l.tasks <- fn:
		l.posted.Add(1)
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on the loop and waits for it to finish.
// It must not be called from the loop goroutine itself.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	var ok bool

	err := l.PostWait(ctx, func() {
		defer close(done)
		fn()
		ok = true
	})
	if err != nil {
		return err
	}

	select {
	case <-done:
		if !ok {
			return ErrTaskPanicked
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopStopped
	}
}

// RunPending runs queued tasks in the calling goroutine until the queue is
// empty, including tasks posted by the tasks it runs. It returns the number
// of tasks executed.
//
// RunPending is for driving a loop that is not running (tests, one-shot
// commands); calling it concurrently with Run breaks the single goroutine
// guarantee.
func (l *Loop) RunPending() int {
	n := 0
	for {
		select {
		case fn := <-l.tasks:
			l.execute(fn)
			n++
		default:
			return n
		}
	}
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	return len(l.tasks)
}

// AfterFunc posts fn to the loop once d has elapsed. A full queue delays the
// task rather than dropping it.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *Timer {
	t := &Timer{}
	t.timer = time.AfterFunc(d, func() {
		err := l.PostWait(context.Background(), func() {
			if !t.stopped.Load() {
				fn()
			}
		})
		if err != nil {
			log.Warn().Err(err).Dur("delay", d).Msg("Dropped timer task")
		}
	})
	return t
}

func (l *Loop) execute(fn func()) {
	defer func() {
		l.executed.Add(1)
		l.metrics.LoopTasksTotal.Add(context.Background(), 1)

		if r := recover(); r != nil {
			l.panicked.Add(1)
			l.metrics.LoopPanicsTotal.Add(context.Background(), 1)

			stack := debug.Stack()
			func() {
				defer func() {
					_ = recover()
				}()
				l.panicHandler(r, stack)
			}()
		}
	}()

	fn()
}

// Stats returns loop statistics.
func (l *Loop) Stats() LoopStats {
	return LoopStats{
		Posted:   l.posted.Load(),
		Executed: l.executed.Load(),
		Panicked: l.panicked.Load(),
		Pending:  len(l.tasks),
	}
}

// LoopStats contains statistics for a loop.
type LoopStats struct {
	Posted   uint64
	Executed uint64
	Panicked uint64
	Pending  int
}

// Timer is a pending AfterFunc task.
type Timer struct {
	timer   *time.Timer
	stopped atomic.Bool
}

// Stop prevents the task from running. It returns false if the timer was
// already stopped. A task that was already posted but has not run yet is
// skipped when stopped from the loop goroutine.
func (t *Timer) Stop() bool {
	if t.stopped.Swap(true) {
		return false
	}
	t.timer.Stop()
	return true
}
