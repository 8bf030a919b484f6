package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfeidau/cloudconsole/internal/models"
)

// Sentinel errors shared by every store implementation.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInvalidReference = errors.New("invalid reference")
)

// Per entity errors wrap the shared sentinels so callers can match either.
var (
	ErrOrganizationNotFound = fmt.Errorf("organization %w", ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrDatacenterNotFound   = fmt.Errorf("datacenter %w", ErrNotFound)
	ErrVpcNotFound          = fmt.Errorf("vpc %w", ErrNotFound)
)

// OrganizationStore defines the interface for organization storage operations.
type OrganizationStore interface {
	// List returns every organization in creation order.
	List(ctx context.Context) ([]models.Organization, error)

	// Get retrieves an organization by ID.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Get(ctx context.Context, id string) (models.Organization, error)

	// Create stores a new organization.
	// Returns ErrAlreadyExists if an organization with the same ID exists.
	Create(ctx context.Context, org models.Organization) error
}

// UserStore defines the interface for user storage operations.
type UserStore interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (models.User, error)
	Create(ctx context.Context, user models.User) error
}

// DatacenterStore defines the interface for datacenter storage operations.
type DatacenterStore interface {
	List(ctx context.Context) ([]models.Datacenter, error)
	Get(ctx context.Context, id string) (models.Datacenter, error)
	Create(ctx context.Context, dc models.Datacenter) error
}

// VpcStore defines the interface for VPC storage operations.
//
// Create and Update return ErrInvalidReference when the organization or
// datacenter named by the VPC does not exist. Empty references are allowed.
type VpcStore interface {
	List(ctx context.Context) ([]models.Vpc, error)

	// Get returns ErrVpcNotFound if the VPC doesn't exist.
	Get(ctx context.Context, id string) (models.Vpc, error)

	// Create returns ErrAlreadyExists if a VPC with the same ID exists.
	Create(ctx context.Context, vpc models.Vpc) error

	// Update replaces every field of an existing VPC.
	// Returns ErrVpcNotFound if the VPC doesn't exist.
	Update(ctx context.Context, vpc models.Vpc) error

	// Delete returns ErrVpcNotFound if the VPC doesn't exist.
	Delete(ctx context.Context, id string) error
}

// Stores bundles one store per entity kind.
type Stores struct {
	Organizations OrganizationStore
	Users         UserStore
	Datacenters   DatacenterStore
	Vpcs          VpcStore
}
