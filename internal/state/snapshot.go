package state

import (
	"iter"

	"github.com/wolfeidau/cloudconsole/internal/models"
)

// Snapshot is an immutable, ordered view of a store's entities.
// The entities and their index are built together and never modified after
// the snapshot is installed; accessors hand out clones.
type Snapshot[T models.Entity[T]] struct {
	entities []T
	index    map[string]int
}

func newSnapshot[T models.Entity[T]](entities []T) *Snapshot[T] {
	s := &Snapshot[T]{
		entities: make([]T, len(entities)),
		index:    make(map[string]int, len(entities)),
	}
	for i, e := range entities {
		s.entities[i] = e.Clone()
		s.index[e.EntityID()] = i
	}
	return s
}

// Len returns the number of entities.
func (s *Snapshot[T]) Len() int {
	return len(s.entities)
}

// At returns a copy of the entity at position i. It panics if i is out of range.
func (s *Snapshot[T]) At(i int) T {
	return s.entities[i].Clone()
}

// IndexOf returns the position of id, or -1.
func (s *Snapshot[T]) IndexOf(id string) int {
	i, ok := s.index[id]
	if !ok {
		return -1
	}
	return i
}

// Get returns a copy of the entity with the given id.
func (s *Snapshot[T]) Get(id string) (T, bool) {
	i, ok := s.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return s.entities[i].Clone(), true
}

// All iterates over copies of the entities in order.
func (s *Snapshot[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, e := range s.entities {
			if !yield(i, e.Clone()) {
				return
			}
		}
	}
}

// IDs returns the entity ids in order.
func (s *Snapshot[T]) IDs() []string {
	ids := make([]string, len(s.entities))
	for i, e := range s.entities {
		ids[i] = e.EntityID()
	}
	return ids
}

// Slice returns a copy of every entity in order.
func (s *Snapshot[T]) Slice() []T {
	out := make([]T, len(s.entities))
	for i, e := range s.entities {
		out[i] = e.Clone()
	}
	return out
}
