package view

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/cloudconsole/internal/flux"
	"github.com/wolfeidau/cloudconsole/internal/models"
	"github.com/wolfeidau/cloudconsole/internal/service"
	"github.com/wolfeidau/cloudconsole/internal/state"
)

// fakeAPI is a VPC-only console API. Writes block on gate when it is set.
type fakeAPI struct {
	mu      sync.Mutex
	vpcs    []models.Vpc
	err     error
	gate    chan struct{}
	deletes []string
	creates int
}

func (f *fakeAPI) ListOrganizations(context.Context) ([]models.Organization, error) {
	return []models.Organization{{ID: "o1", Name: "acme"}}, nil
}

func (f *fakeAPI) ListUsers(context.Context) ([]models.User, error) { return nil, nil }

func (f *fakeAPI) ListDatacenters(context.Context) ([]models.Datacenter, error) {
	return []models.Datacenter{{ID: "dc1", Name: "us-west-1"}}, nil
}

func (f *fakeAPI) ListVpcs(context.Context) ([]models.Vpc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Vpc(nil), f.vpcs...), nil
}

func (f *fakeAPI) CreateVpc(ctx context.Context, vpc models.Vpc) (models.Vpc, error) {
	f.mu.Lock()
	f.creates++
	vpc.ID = fmt.Sprintf("generated-%d", f.creates)
	f.mu.Unlock()
	return f.UpdateVpc(ctx, vpc)
}

func (f *fakeAPI) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates
}

func (f *fakeAPI) UpdateVpc(ctx context.Context, vpc models.Vpc) (models.Vpc, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Vpc{}, f.err
	}
	for i := range f.vpcs {
		if f.vpcs[i].ID == vpc.ID {
			f.vpcs[i] = vpc
			return vpc, nil
		}
	}
	f.vpcs = append(f.vpcs, vpc)
	return vpc, nil
}

func (f *fakeAPI) DeleteVpc(ctx context.Context, id string) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deletes = append(f.deletes, id)
	for i := range f.vpcs {
		if f.vpcs[i].ID == id {
			f.vpcs = append(f.vpcs[:i], f.vpcs[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeAPI) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeAPI) wait() {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
}

type harness struct {
	t   *testing.T
	reg *state.Registry
	svc *service.Service
	api *fakeAPI
}

func newHarness(t *testing.T, api *fakeAPI) *harness {
	t.Helper()

	loop := flux.NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = loop.Run(ctx) }()
	t.Cleanup(cancel)

	reg := state.NewRegistry(loop, flux.NewDispatcher())
	svc := service.New(api, loop, reg.Dispatcher)
	require.NoError(t, svc.FetchAll(context.Background()).Wait(context.Background()))

	return &harness{t: t, reg: reg, svc: svc, api: api}
}

// do runs fn on the loop. fn must not call require.
func (h *harness) do(fn func()) {
	h.t.Helper()
	require.NoError(h.t, h.reg.Loop.Do(context.Background(), fn))
}
