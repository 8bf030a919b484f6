package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/cloudconsole/internal/models"
	"github.com/wolfeidau/cloudconsole/internal/server"
	"github.com/wolfeidau/cloudconsole/internal/service"
	"github.com/wolfeidau/cloudconsole/internal/store/memory"
)

var _ service.API = (*Client)(nil)

func newClient(t *testing.T, url string) *Client {
	t.Helper()

	cfg := DefaultConfig()
	cfg.ServerURL = url
	cfg.InitialInterval = time.Millisecond
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestClient_AgainstServer(t *testing.T) {
	ctx := context.Background()
	stores := memory.NewStores()
	require.NoError(t, stores.Organizations.Create(ctx, models.Organization{ID: "o1", Name: "acme"}))
	require.NoError(t, stores.Datacenters.Create(ctx, models.Datacenter{ID: "dc1", Name: "us-west-1"}))
	require.NoError(t, stores.Users.Create(ctx, models.User{ID: "u1", Username: "alice"}))

	h, err := server.New(stores).Handler(zerolog.Nop(), server.Options{})
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c := newClient(t, srv.URL)

	orgs, err := c.ListOrganizations(ctx)
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	require.Equal(t, "acme", orgs[0].Name)

	users, err := c.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	dcs, err := c.ListDatacenters(ctx)
	require.NoError(t, err)
	require.Len(t, dcs, 1)

	created, err := c.CreateVpc(ctx, models.Vpc{Name: "prod", Network: "10.97.0.0/16", Organization: "o1"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	created.Name = "staging"
	updated, err := c.UpdateVpc(ctx, created)
	require.NoError(t, err)
	require.Equal(t, "staging", updated.Name)

	// the cached list must be revalidated after the update
	vpcs, err := c.ListVpcs(ctx)
	require.NoError(t, err)
	require.Equal(t, []models.Vpc{updated}, vpcs)

	vpcs, err = c.ListVpcs(ctx)
	require.NoError(t, err)
	require.Equal(t, []models.Vpc{updated}, vpcs)

	got, err := c.GetVpc(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, updated, got)

	require.NoError(t, c.DeleteVpc(ctx, created.ID))
	require.True(t, IsNotFound(c.DeleteVpc(ctx, created.ID)))

	_, err = c.CreateVpc(ctx, models.Vpc{Network: "bogus"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Contains(t, apiErr.Message, "invalid network")
}

func TestClient_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode([]models.Vpc{{ID: "v1"}})
	}))
	t.Cleanup(srv.Close)

	vpcs, err := newClient(t, srv.URL).ListVpcs(context.Background())
	require.NoError(t, err)
	require.Len(t, vpcs, 1)
	require.Equal(t, int32(3), calls.Load())
}

func TestClient_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal Server Error"}`))
	}))
	t.Cleanup(srv.Close)

	_, err := newClient(t, srv.URL).ListVpcs(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	require.Equal(t, int32(4), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := newClient(t, srv.URL).ListVpcs(context.Background())
	require.True(t, IsNotFound(err))
	require.Equal(t, int32(1), calls.Load())
}

func TestClient_DoesNotRetryMutations(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	_, err := newClient(t, srv.URL).UpdateVpc(context.Background(), models.Vpc{ID: "v1"})
	require.Error(t, err)
	require.Equal(t, int32(1), calls.Load())
}

func TestClient_ServesFromCache(t *testing.T) {
	var full atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Cache-Control", "no-cache")
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		full.Add(1)
		_ = json.NewEncoder(w).Encode([]models.Datacenter{{ID: "dc1"}})
	}))
	t.Cleanup(srv.Close)

	c := newClient(t, srv.URL)
	for range 3 {
		dcs, err := c.ListDatacenters(context.Background())
		require.NoError(t, err)
		require.Equal(t, []models.Datacenter{{ID: "dc1"}}, dcs)
	}
	require.Equal(t, int32(1), full.Load())
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New(Config{ServerURL: "localhost:8080"})
	require.Error(t, err)

	_, err = New(Config{ServerURL: "ftp://example.com"})
	require.Error(t, err)
}

func TestUpdateVpc_RequiresID(t *testing.T) {
	c := newClient(t, "http://127.0.0.1:1")
	_, err := c.UpdateVpc(context.Background(), models.Vpc{})
	require.Error(t, err)
}
