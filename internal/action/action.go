// Package action defines the closed set of messages that may be dispatched
// to the client-side stores.
//
// Action is a sealed interface: only types declared in this package satisfy
// it, so stores can switch over every kind that exists.
package action

import (
	"errors"
	"fmt"

	"github.com/wolfeidau/cloudconsole/internal/models"
)

// ErrMalformed is returned by Validate for actions that cannot be applied.
var ErrMalformed = errors.New("malformed action")

// Kind discriminates actions.
type Kind string

const (
	KindSyncOrganizations Kind = "organization.sync"
	KindSyncUsers         Kind = "user.sync"
	KindSyncVpcs          Kind = "vpc.sync"
	KindSyncDatacenters   Kind = "datacenter.sync"
	KindChangeVpc         Kind = "vpc.change"
)

func (k Kind) String() string { return string(k) }

// Action is a tagged message dispatched to every registered store.
type Action interface {
	Kind() Kind
	// Validate reports whether the payload is well formed.
	Validate() error

	sealed()
}

// SyncOrganizations replaces the organizations snapshot.
type SyncOrganizations struct {
	Organizations []models.Organization
}

func (SyncOrganizations) Kind() Kind { return KindSyncOrganizations }
func (SyncOrganizations) sealed()    {}

func (a SyncOrganizations) Validate() error {
	return validateEntities(a.Kind(), a.Organizations)
}

// SyncUsers replaces the users snapshot.
type SyncUsers struct {
	Users []models.User
}

func (SyncUsers) Kind() Kind { return KindSyncUsers }
func (SyncUsers) sealed()    {}

func (a SyncUsers) Validate() error {
	return validateEntities(a.Kind(), a.Users)
}

// SyncVpcs replaces the VPC snapshot.
type SyncVpcs struct {
	Vpcs []models.Vpc
}

func (SyncVpcs) Kind() Kind { return KindSyncVpcs }
func (SyncVpcs) sealed()    {}

func (a SyncVpcs) Validate() error {
	return validateEntities(a.Kind(), a.Vpcs)
}

// SyncDatacenters replaces the datacenter snapshot.
type SyncDatacenters struct {
	Datacenters []models.Datacenter
}

func (SyncDatacenters) Kind() Kind { return KindSyncDatacenters }
func (SyncDatacenters) sealed()    {}

func (a SyncDatacenters) Validate() error {
	return validateEntities(a.Kind(), a.Datacenters)
}

// ChangeVpc announces that a VPC was modified server side. No store
// applies it; views use the follow-up SyncVpcs instead.
type ChangeVpc struct {
	ID string
}

func (ChangeVpc) Kind() Kind { return KindChangeVpc }
func (ChangeVpc) sealed()    {}

func (a ChangeVpc) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: %s: missing id", ErrMalformed, a.Kind())
	}
	return nil
}

// validateEntities rejects empty and duplicate IDs, either of which would
// leave a store index inconsistent with its snapshot.
func validateEntities[T models.Entity[T]](kind Kind, entities []T) error {
	seen := make(map[string]struct{}, len(entities))
	for i, e := range entities {
		id := e.EntityID()
		if id == "" {
			return fmt.Errorf("%w: %s: entity %d has no id", ErrMalformed, kind, i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s: duplicate id %s", ErrMalformed, kind, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
