package state

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/cloudconsole/internal/action"
	"github.com/wolfeidau/cloudconsole/internal/flux"
	"github.com/wolfeidau/cloudconsole/internal/models"
	"github.com/wolfeidau/cloudconsole/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ChangeEvent is the emitter event name used for snapshot changes.
const ChangeEvent = "change"

// Extractor returns the entity list carried by a, and whether a is the sync
// action for the store's entity kind.
type Extractor[T any] func(a action.Action) ([]T, bool)

// EntityStore holds the authoritative snapshot of one entity kind.
//
// The store only changes in response to its sync action. Each sync installs
// a new snapshot with a single pointer swap, so readers see either the old
// snapshot with its index or the new one with its index, never a mix.
// Listeners are notified on the next loop turn, never inside Dispatch.
type EntityStore[T models.Entity[T]] struct {
	name     string
	emitter  *flux.Emitter
	extract  Extractor[T]
	token    flux.Token
	snapshot atomic.Pointer[Snapshot[T]]
	metrics  *telemetry.Metrics
}

// NewEntityStore creates a store and registers it with d for the rest of the
// process lifetime.
func NewEntityStore[T models.Entity[T]](name string, d *flux.Dispatcher, loop *flux.Loop, extract Extractor[T]) *EntityStore[T] {
	s := &EntityStore[T]{
		name:    name,
		emitter: flux.NewEmitter(loop),
		extract: extract,
		metrics: telemetry.GetMetrics(),
	}
	s.snapshot.Store(newSnapshot[T](nil))
	s.token = d.Register(s.callback)
	return s
}

// Name returns the store name used in logs and metrics.
func (s *EntityStore[T]) Name() string {
	return s.name
}

// Token returns the dispatcher registration token.
func (s *EntityStore[T]) Token() flux.Token {
	return s.token
}

// Snapshot returns the current snapshot.
func (s *EntityStore[T]) Snapshot() *Snapshot[T] {
	return s.snapshot.Load()
}

// ByID returns a copy of the entity with the given id, or false if the
// current snapshot does not contain it.
func (s *EntityStore[T]) ByID(id string) (T, bool) {
	return s.Snapshot().Get(id)
}

// MutableCopy returns a copy of every entity that the caller may modify
// freely, typically to seed an edit form.
func (s *EntityStore[T]) MutableCopy() []T {
	return s.Snapshot().Slice()
}

// AddChangeListener registers fn to run after each snapshot change.
func (s *EntityStore[T]) AddChangeListener(fn func()) flux.ListenerID {
	if fn == nil {
		return 0
	}
	return s.emitter.On(ChangeEvent, func(...any) {
		s.metrics.ChangeListenerRuns.Add(context.Background(), 1, s.attrs())
		fn()
	})
}

// RemoveChangeListener removes a listener added with AddChangeListener.
func (s *EntityStore[T]) RemoveChangeListener(id flux.ListenerID) {
	s.emitter.RemoveListener(ChangeEvent, id)
}

// ListenerCount returns the number of change listeners.
func (s *EntityStore[T]) ListenerCount() int {
	return s.emitter.ListenerCount(ChangeEvent)
}

func (s *EntityStore[T]) callback(a action.Action) {
	entities, ok := s.extract(a)
	if !ok {
		return
	}
	s.sync(entities)
}

// sync installs a snapshot built from entities. The snapshot holds its own
// clones, so later changes to the caller's slice are not visible.
func (s *EntityStore[T]) sync(entities []T) {
	next := newSnapshot(entities)
	s.snapshot.Store(next)

	ctx := context.Background()
	s.metrics.StoreSyncTotal.Add(ctx, 1, s.attrs())
	s.metrics.StoreSnapshotSize.Record(ctx, int64(next.Len()), s.attrs())

	log.Debug().Str("store", s.name).Int("count", next.Len()).Msg("Installed snapshot")

	if err := s.emitter.EmitDefer(ChangeEvent); err != nil {
		log.Error().Err(err).Str("store", s.name).Msg("Failed to schedule change notification")
	}
}

func (s *EntityStore[T]) attrs() metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("store", s.name))
}
