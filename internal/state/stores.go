package state

import (
	"github.com/wolfeidau/cloudconsole/internal/action"
	"github.com/wolfeidau/cloudconsole/internal/flux"
	"github.com/wolfeidau/cloudconsole/internal/models"
)

type (
	OrganizationsStore = EntityStore[models.Organization]
	UsersStore         = EntityStore[models.User]
	VpcsStore          = EntityStore[models.Vpc]
	DatacentersStore   = EntityStore[models.Datacenter]
)

// NewOrganizationsStore creates the store applying action.SyncOrganizations.
func NewOrganizationsStore(d *flux.Dispatcher, loop *flux.Loop) *OrganizationsStore {
	return NewEntityStore("organizations", d, loop, organizationsFrom)
}

// NewUsersStore creates the store applying action.SyncUsers.
func NewUsersStore(d *flux.Dispatcher, loop *flux.Loop) *UsersStore {
	return NewEntityStore("users", d, loop, usersFrom)
}

// NewVpcsStore creates the store applying action.SyncVpcs.
func NewVpcsStore(d *flux.Dispatcher, loop *flux.Loop) *VpcsStore {
	return NewEntityStore("vpcs", d, loop, vpcsFrom)
}

// NewDatacentersStore creates the store applying action.SyncDatacenters.
func NewDatacentersStore(d *flux.Dispatcher, loop *flux.Loop) *DatacentersStore {
	return NewEntityStore("datacenters", d, loop, datacentersFrom)
}

// Each extractor lists every action type so a new kind shows up here when
// it is added to the action package.

func organizationsFrom(a action.Action) ([]models.Organization, bool) {
	switch a := a.(type) {
	case action.SyncOrganizations:
		return a.Organizations, true
	case action.SyncUsers, action.SyncVpcs, action.SyncDatacenters, action.ChangeVpc:
		return nil, false
	default:
		return nil, false
	}
}

func usersFrom(a action.Action) ([]models.User, bool) {
	switch a := a.(type) {
	case action.SyncUsers:
		return a.Users, true
	case action.SyncOrganizations, action.SyncVpcs, action.SyncDatacenters, action.ChangeVpc:
		return nil, false
	default:
		return nil, false
	}
}

func vpcsFrom(a action.Action) ([]models.Vpc, bool) {
	switch a := a.(type) {
	case action.SyncVpcs:
		return a.Vpcs, true
	case action.SyncOrganizations, action.SyncUsers, action.SyncDatacenters, action.ChangeVpc:
		return nil, false
	default:
		return nil, false
	}
}

func datacentersFrom(a action.Action) ([]models.Datacenter, bool) {
	switch a := a.(type) {
	case action.SyncDatacenters:
		return a.Datacenters, true
	case action.SyncOrganizations, action.SyncUsers, action.SyncVpcs, action.ChangeVpc:
		return nil, false
	default:
		return nil, false
	}
}
