package state

import "github.com/wolfeidau/cloudconsole/internal/flux"

// Registry holds the single instance of each store along with the loop and
// dispatcher they are wired to. Views receive a Registry instead of reaching
// for package globals.
type Registry struct {
	Loop       *flux.Loop
	Dispatcher *flux.Dispatcher

	Organizations *OrganizationsStore
	Users         *UsersStore
	Vpcs          *VpcsStore
	Datacenters   *DatacentersStore
}

// NewRegistry creates every store and registers them with d.
func NewRegistry(loop *flux.Loop, d *flux.Dispatcher) *Registry {
	return &Registry{
		Loop:          loop,
		Dispatcher:    d,
		Organizations: NewOrganizationsStore(d, loop),
		Users:         NewUsersStore(d, loop),
		Vpcs:          NewVpcsStore(d, loop),
		Datacenters:   NewDatacentersStore(d, loop),
	}
}
