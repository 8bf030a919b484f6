package state

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/cloudconsole/internal/action"
	"github.com/wolfeidau/cloudconsole/internal/flux"
	"github.com/wolfeidau/cloudconsole/internal/models"
)

func newTestRegistry() *Registry {
	return NewRegistry(flux.NewLoop(), flux.NewDispatcher())
}

func TestEntityStore_Empty(t *testing.T) {
	reg := newTestRegistry()

	require.Zero(t, reg.Organizations.Snapshot().Len())
	require.Empty(t, reg.Organizations.MutableCopy())

	_, ok := reg.Organizations.ByID("missing")
	require.False(t, ok)
}

func TestEntityStore_Sync(t *testing.T) {
	reg := newTestRegistry()

	orgs := []models.Organization{
		{ID: "o1", Name: "acme", Roles: []string{"admin"}},
		{ID: "o2", Name: "globex"},
	}
	require.NoError(t, reg.Dispatcher.Dispatch(action.SyncOrganizations{Organizations: orgs}))

	snap := reg.Organizations.Snapshot()
	require.Equal(t, 2, snap.Len())
	require.Equal(t, []string{"o1", "o2"}, snap.IDs())

	org, ok := reg.Organizations.ByID("o2")
	require.True(t, ok)
	require.Equal(t, "globex", org.Name)

	// other stores ignore the action
	require.Zero(t, reg.Users.Snapshot().Len())
	require.Zero(t, reg.Vpcs.Snapshot().Len())
}

func TestEntityStore_IgnoresOtherActions(t *testing.T) {
	reg := newTestRegistry()

	changed := 0
	reg.Vpcs.AddChangeListener(func() { changed++ })

	require.NoError(t, reg.Dispatcher.Dispatch(action.ChangeVpc{ID: "v1"}))
	require.NoError(t, reg.Dispatcher.Dispatch(action.SyncUsers{Users: []models.User{{ID: "u1"}}}))
	reg.Loop.RunPending()

	require.Zero(t, changed)
	require.Zero(t, reg.Vpcs.Snapshot().Len())
}

func TestEntityStore_CopyOnWrite(t *testing.T) {
	reg := newTestRegistry()

	input := []models.User{{ID: "u1", Username: "alice", Roles: []string{"ops"}}}
	require.NoError(t, reg.Dispatcher.Dispatch(action.SyncUsers{Users: input}))

	t.Run("caller slice is not shared", func(t *testing.T) {
		input[0].Username = "mallory"
		input[0].Roles[0] = "root"

		u, _ := reg.Users.ByID("u1")
		require.Equal(t, "alice", u.Username)
		require.Equal(t, []string{"ops"}, u.Roles)
	})

	t.Run("returned entities are not shared", func(t *testing.T) {
		snap := reg.Users.Snapshot()
		u := snap.At(0)
		u.Username = "mallory"
		u.Roles[0] = "root"

		for _, e := range snap.All() {
			e.Roles = append(e.Roles, "extra")
		}

		again := reg.Users.Snapshot().At(0)
		require.Equal(t, "alice", again.Username)
		require.Equal(t, []string{"ops"}, again.Roles)
	})

	t.Run("mutable copy is independent", func(t *testing.T) {
		copied := reg.Users.MutableCopy()
		copied[0].Username = "bob"

		u, _ := reg.Users.ByID("u1")
		require.Equal(t, "alice", u.Username)
	})

	t.Run("old snapshot survives a sync", func(t *testing.T) {
		old := reg.Users.Snapshot()
		require.NoError(t, reg.Dispatcher.Dispatch(action.SyncUsers{Users: []models.User{{ID: "u2", Username: "carol"}}}))

		require.Equal(t, 1, old.Len())
		require.Equal(t, "alice", old.At(0).Username)
		require.Equal(t, -1, old.IndexOf("u2"))

		_, ok := reg.Users.ByID("u1")
		require.False(t, ok)
	})
}

func TestEntityStore_LastSyncWins(t *testing.T) {
	reg := newTestRegistry()
	rng := rand.New(rand.NewPCG(1, 2))

	latest := map[string]string{}
	for round := range 50 {
		var vpcs []models.Vpc
		latest = map[string]string{}
		for i := range rng.IntN(8) {
			id := fmt.Sprintf("v%d", rng.IntN(10))
			if _, dup := latest[id]; dup {
				continue
			}
			name := fmt.Sprintf("round-%d-%d", round, i)
			latest[id] = name
			vpcs = append(vpcs, models.Vpc{ID: id, Name: name})
		}
		require.NoError(t, reg.Dispatcher.Dispatch(action.SyncVpcs{Vpcs: vpcs}))

		snap := reg.Vpcs.Snapshot()
		for i, id := range snap.IDs() {
			require.Equal(t, i, snap.IndexOf(id))
			v, ok := reg.Vpcs.ByID(id)
			require.True(t, ok)
			require.Equal(t, snap.At(i), v)
		}
	}

	for i := range 10 {
		id := fmt.Sprintf("v%d", i)
		v, ok := reg.Vpcs.ByID(id)
		name, want := latest[id]
		require.Equal(t, want, ok, id)
		if want {
			require.Equal(t, name, v.Name)
		}
	}
}

func TestEntityStore_ChangeListeners(t *testing.T) {
	t.Run("order and count", func(t *testing.T) {
		reg := newTestRegistry()

		var calls []string
		reg.Datacenters.AddChangeListener(func() { calls = append(calls, "a") })
		reg.Datacenters.AddChangeListener(func() { calls = append(calls, "b") })

		require.NoError(t, reg.Dispatcher.Dispatch(action.SyncDatacenters{
			Datacenters: []models.Datacenter{{ID: "dc1", Name: "us-west-1"}},
		}))
		reg.Loop.RunPending()

		require.Equal(t, []string{"a", "b"}, calls)
	})

	t.Run("deferred out of dispatch", func(t *testing.T) {
		reg := newTestRegistry()

		called := false
		reg.Vpcs.AddChangeListener(func() { called = true })

		var calledDuringDispatch bool
		reg.Dispatcher.Register(func(a action.Action) {
			calledDuringDispatch = called
		})

		require.NoError(t, reg.Dispatcher.Dispatch(action.SyncVpcs{}))
		require.False(t, calledDuringDispatch)
		require.False(t, called, "listener ran inside Dispatch")

		reg.Loop.RunPending()
		require.True(t, called)
	})

	t.Run("listener may dispatch", func(t *testing.T) {
		reg := newTestRegistry()

		var dispatchErr error
		reg.Vpcs.AddChangeListener(func() {
			dispatchErr = reg.Dispatcher.Dispatch(action.SyncDatacenters{})
		})

		require.NoError(t, reg.Dispatcher.Dispatch(action.SyncVpcs{}))
		reg.Loop.RunPending()
		require.NoError(t, dispatchErr)
	})

	t.Run("remove", func(t *testing.T) {
		reg := newTestRegistry()

		count := 0
		id := reg.Users.AddChangeListener(func() { count++ })
		require.Equal(t, 1, reg.Users.ListenerCount())

		reg.Users.RemoveChangeListener(id)
		require.Zero(t, reg.Users.ListenerCount())

		require.NoError(t, reg.Dispatcher.Dispatch(action.SyncUsers{}))
		reg.Loop.RunPending()
		require.Zero(t, count)
	})

	t.Run("nil listener is ignored", func(t *testing.T) {
		reg := newTestRegistry()
		require.Zero(t, reg.Users.AddChangeListener(nil))
		require.Zero(t, reg.Users.ListenerCount())
	})
}

func TestRegistry_StoresRegistered(t *testing.T) {
	reg := newTestRegistry()

	tokens := map[flux.Token]string{
		reg.Organizations.Token(): reg.Organizations.Name(),
		reg.Users.Token():         reg.Users.Name(),
		reg.Vpcs.Token():          reg.Vpcs.Name(),
		reg.Datacenters.Token():   reg.Datacenters.Name(),
	}
	require.Len(t, tokens, 4)
}
