package memory

import (
	"context"

	"github.com/wolfeidau/cloudconsole/internal/models"
	"github.com/wolfeidau/cloudconsole/internal/store"
)

// OrganizationStore implements store.OrganizationStore using in-memory storage.
// Data is lost on restart.
type OrganizationStore struct {
	items *collection[models.Organization]
}

// NewOrganizationStore creates a new in-memory organization store.
func NewOrganizationStore() *OrganizationStore {
	return &OrganizationStore{items: newCollection[models.Organization](store.ErrOrganizationNotFound)}
}

// List returns every organization in creation order.
func (s *OrganizationStore) List(ctx context.Context) ([]models.Organization, error) {
	return s.items.list(), nil
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, id string) (models.Organization, error) {
	return s.items.get(id)
}

// Create creates a new organization in memory.
func (s *OrganizationStore) Create(ctx context.Context, org models.Organization) error {
	return s.items.create(org)
}
