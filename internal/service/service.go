// Package service holds the action creators: operations that call the
// console API and dispatch the resulting sync actions on the event loop.
//
// Every operation returns immediately with a Result that resolves once the
// HTTP call and any resulting dispatch have completed. Callers that hold view
// state resume on the loop with Result.Then.
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/cloudconsole/internal/action"
	"github.com/wolfeidau/cloudconsole/internal/flux"
	"github.com/wolfeidau/cloudconsole/internal/models"
)

// API is the server surface the console talks to.
type API interface {
	ListOrganizations(ctx context.Context) ([]models.Organization, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ListDatacenters(ctx context.Context) ([]models.Datacenter, error)
	ListVpcs(ctx context.Context) ([]models.Vpc, error)
	CreateVpc(ctx context.Context, vpc models.Vpc) (models.Vpc, error)
	UpdateVpc(ctx context.Context, vpc models.Vpc) (models.Vpc, error)
	DeleteVpc(ctx context.Context, id string) error
}

// Service turns API calls into dispatched actions.
type Service struct {
	api        API
	loop       *flux.Loop
	dispatcher *flux.Dispatcher
}

// New creates a service dispatching through d on loop.
func New(api API, loop *flux.Loop, d *flux.Dispatcher) *Service {
	return &Service{
		api:        api,
		loop:       loop,
		dispatcher: d,
	}
}

// FetchOrganizations loads organizations and dispatches SyncOrganizations.
func (s *Service) FetchOrganizations(ctx context.Context) *Result {
	return s.fetch(ctx, "organizations", func(ctx context.Context) (action.Action, error) {
		orgs, err := s.api.ListOrganizations(ctx)
		return action.SyncOrganizations{Organizations: orgs}, err
	})
}

// FetchUsers loads users and dispatches SyncUsers.
func (s *Service) FetchUsers(ctx context.Context) *Result {
	return s.fetch(ctx, "users", func(ctx context.Context) (action.Action, error) {
		users, err := s.api.ListUsers(ctx)
		return action.SyncUsers{Users: users}, err
	})
}

// FetchDatacenters loads datacenters and dispatches SyncDatacenters.
func (s *Service) FetchDatacenters(ctx context.Context) *Result {
	return s.fetch(ctx, "datacenters", func(ctx context.Context) (action.Action, error) {
		dcs, err := s.api.ListDatacenters(ctx)
		return action.SyncDatacenters{Datacenters: dcs}, err
	})
}

// FetchVpcs loads VPCs and dispatches SyncVpcs.
func (s *Service) FetchVpcs(ctx context.Context) *Result {
	return s.fetch(ctx, "vpcs", func(ctx context.Context) (action.Action, error) {
		vpcs, err := s.api.ListVpcs(ctx)
		return action.SyncVpcs{Vpcs: vpcs}, err
	})
}

// FetchAll loads every entity kind. The result fails if any fetch fails.
func (s *Service) FetchAll(ctx context.Context) *Result {
	parts := []*Result{
		s.FetchOrganizations(ctx),
		s.FetchUsers(ctx),
		s.FetchDatacenters(ctx),
		s.FetchVpcs(ctx),
	}

	r := newResult(s.loop)
	go func() {
		var first error
		for _, p := range parts {
			if err := p.Wait(ctx); err != nil && first == nil {
				first = err
			}
		}
		r.resolve(first)
	}()
	return r
}

// CommitVpc saves vpc and re-syncs the VPC store from the server.
func (s *Service) CommitVpc(ctx context.Context, vpc models.Vpc) *Result {
	return s.mutate(ctx, "commit", func(ctx context.Context) (string, error) {
		var (
			saved models.Vpc
			err   error
		)
		if vpc.ID == "" {
			saved, err = s.api.CreateVpc(ctx, vpc)
		} else {
			saved, err = s.api.UpdateVpc(ctx, vpc)
		}
		return saved.ID, err
	})
}

// RemoveVpc deletes the VPC and re-syncs the VPC store from the server.
func (s *Service) RemoveVpc(ctx context.Context, id string) *Result {
	return s.mutate(ctx, "remove", func(ctx context.Context) (string, error) {
		return id, s.api.DeleteVpc(ctx, id)
	})
}

func (s *Service) fetch(ctx context.Context, name string, load func(context.Context) (action.Action, error)) *Result {
	r := newResult(s.loop)
	go func() {
		a, err := load(ctx)
		if err != nil {
			r.resolve(fmt.Errorf("failed to fetch %s: %w", name, err))
			return
		}
		r.resolve(s.dispatch(ctx, a))
	}()
	return r
}

// mutate runs op and, on success, refreshes the VPC snapshot so views fall
// back to the server copy. A failed refresh is logged but does not fail the
// mutation, which has already been applied.
func (s *Service) mutate(ctx context.Context, op string, call func(context.Context) (string, error)) *Result {
	r := newResult(s.loop)
	go func() {
		id, err := call(ctx)
		if err != nil {
			r.resolve(fmt.Errorf("failed to %s vpc: %w", op, err))
			return
		}

		if id != "" {
			if err := s.dispatch(ctx, action.ChangeVpc{ID: id}); err != nil {
				log.Warn().Err(err).Str("vpc_id", id).Msg("Failed to dispatch vpc change")
			}
		}

		if err := s.FetchVpcs(ctx).Wait(ctx); err != nil {
			log.Warn().Err(err).Str("op", op).Str("vpc_id", id).Msg("Failed to refresh vpcs after change")
		}
		r.resolveID(id)
	}()
	return r
}

// dispatch runs a on the loop and waits for the dispatch to return.
func (s *Service) dispatch(ctx context.Context, a action.Action) error {
	var dispatchErr error
	if err := s.loop.Do(ctx, func() {
		dispatchErr = s.dispatcher.Dispatch(a)
	}); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", a.Kind(), err)
	}
	return dispatchErr
}
