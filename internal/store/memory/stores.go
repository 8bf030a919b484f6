package memory

import "github.com/wolfeidau/cloudconsole/internal/store"

// NewStores creates an empty in-memory store set.
func NewStores() store.Stores {
	orgs := NewOrganizationStore()
	dcs := NewDatacenterStore()
	return store.Stores{
		Organizations: orgs,
		Users:         NewUserStore(orgs),
		Datacenters:   dcs,
		Vpcs:          NewVpcStore(orgs, dcs),
	}
}
