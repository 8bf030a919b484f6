package service

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/cloudconsole/internal/flux"
)

// Result is the outcome of an asynchronous service call.
type Result struct {
	loop *flux.Loop
	done chan struct{}
	err  error
	id   string
}

func newResult(loop *flux.Loop) *Result {
	return &Result{
		loop: loop,
		done: make(chan struct{}),
	}
}

func (r *Result) resolve(err error) {
	r.err = err
	close(r.done)
}

func (r *Result) resolveID(id string) {
	r.id = id
	r.resolve(nil)
}

// Done is closed once the call has completed.
func (r *Result) Done() <-chan struct{} {
	return r.done
}

// Err returns the call error. It is only meaningful after Done is closed.
func (r *Result) Err() error {
	return r.err
}

// ID returns the ID of the entity a successful mutation saved, which for a
// create is the server assigned one. It is empty for fetches and failures.
// Like Err it is only meaningful after Done is closed.
func (r *Result) ID() string {
	return r.id
}

// Wait blocks until the call completes or ctx is done.
// It must not be called from the loop goroutine.
func (r *Result) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Then posts fn to the loop once the call completes. fn receives nil on
// success. A full loop queue delays fn; it is only dropped once the loop has
// stopped.
func (r *Result) Then(fn func(err error)) {
	go func() {
		<-r.done
		if err := r.loop.PostWait(context.Background(), func() { fn(r.err) }); err != nil {
			log.Warn().Err(err).Msg("Dropped result continuation")
		}
	}()
}
