package memory

import (
	"context"

	"github.com/wolfeidau/cloudconsole/internal/models"
	"github.com/wolfeidau/cloudconsole/internal/store"
)

// DatacenterStore implements store.DatacenterStore using in-memory storage.
type DatacenterStore struct {
	items *collection[models.Datacenter]
}

func NewDatacenterStore() *DatacenterStore {
	return &DatacenterStore{items: newCollection[models.Datacenter](store.ErrDatacenterNotFound)}
}

func (s *DatacenterStore) List(ctx context.Context) ([]models.Datacenter, error) {
	return s.items.list(), nil
}

func (s *DatacenterStore) Get(ctx context.Context, id string) (models.Datacenter, error) {
	return s.items.get(id)
}

func (s *DatacenterStore) Create(ctx context.Context, dc models.Datacenter) error {
	return s.items.create(dc)
}
