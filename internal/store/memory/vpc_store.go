package memory

import (
	"context"
	"fmt"

	"github.com/wolfeidau/cloudconsole/internal/models"
	"github.com/wolfeidau/cloudconsole/internal/store"
)

// VpcStore implements store.VpcStore using in-memory storage.
type VpcStore struct {
	items *collection[models.Vpc]
	orgs  *OrganizationStore
	dcs   *DatacenterStore
}

// NewVpcStore creates a VPC store that checks references against orgs and dcs.
func NewVpcStore(orgs *OrganizationStore, dcs *DatacenterStore) *VpcStore {
	return &VpcStore{
		items: newCollection[models.Vpc](store.ErrVpcNotFound),
		orgs:  orgs,
		dcs:   dcs,
	}
}

// List returns every VPC in creation order.
func (s *VpcStore) List(ctx context.Context) ([]models.Vpc, error) {
	return s.items.list(), nil
}

// Get retrieves a VPC by ID.
func (s *VpcStore) Get(ctx context.Context, id string) (models.Vpc, error) {
	return s.items.get(id)
}

// Create creates a new VPC.
func (s *VpcStore) Create(ctx context.Context, vpc models.Vpc) error {
	if err := s.checkReferences(vpc); err != nil {
		return err
	}
	return s.items.create(vpc)
}

// Update replaces an existing VPC.
func (s *VpcStore) Update(ctx context.Context, vpc models.Vpc) error {
	if err := s.checkReferences(vpc); err != nil {
		return err
	}
	return s.items.update(vpc)
}

// Delete deletes a VPC by ID.
func (s *VpcStore) Delete(ctx context.Context, id string) error {
	return s.items.delete(id)
}

func (s *VpcStore) checkReferences(vpc models.Vpc) error {
	if vpc.Organization != "" && !s.orgs.items.exists(vpc.Organization) {
		return fmt.Errorf("%w: organization %s", store.ErrInvalidReference, vpc.Organization)
	}
	if vpc.Datacenter != "" && !s.dcs.items.exists(vpc.Datacenter) {
		return fmt.Errorf("%w: datacenter %s", store.ErrInvalidReference, vpc.Datacenter)
	}
	return nil
}
