package memory

import (
	"sync"

	"github.com/wolfeidau/cloudconsole/internal/models"
	"github.com/wolfeidau/cloudconsole/internal/store"
)

// collection is an ordered in-memory table of one entity kind. Entities are
// cloned on the way in and out so callers never share storage with it.
type collection[T models.Entity[T]] struct {
	mu sync.RWMutex

	items    map[string]T
	order    []string // creation order
	notFound error
}

func newCollection[T models.Entity[T]](notFound error) *collection[T] {
	return &collection[T]{
		items:    make(map[string]T),
		notFound: notFound,
	}
}

func (c *collection[T]) list() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]T, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.items[id].Clone())
	}
	return result
}

func (c *collection[T]) get(id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[id]
	if !exists {
		var zero T
		return zero, c.notFound
	}
	return item.Clone(), nil
}

func (c *collection[T]) exists(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.items[id]
	return ok
}

func (c *collection[T]) create(item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := item.EntityID()
	if _, exists := c.items[id]; exists {
		return store.ErrAlreadyExists
	}
	c.items[id] = item.Clone()
	c.order = append(c.order, id)
	return nil
}

func (c *collection[T]) update(item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := item.EntityID()
	if _, exists := c.items[id]; !exists {
		return c.notFound
	}
	c.items[id] = item.Clone()
	return nil
}

func (c *collection[T]) delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[id]; !exists {
		return c.notFound
	}
	delete(c.items, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}
