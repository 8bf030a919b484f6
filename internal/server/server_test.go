package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/cloudconsole/internal/models"
	"github.com/wolfeidau/cloudconsole/internal/store"
	"github.com/wolfeidau/cloudconsole/internal/store/memory"
)

func newTestServer(t *testing.T) (http.Handler, store.Stores) {
	t.Helper()

	ctx := context.Background()
	stores := memory.NewStores()
	require.NoError(t, stores.Organizations.Create(ctx, models.Organization{ID: "o1", Name: "acme"}))
	require.NoError(t, stores.Datacenters.Create(ctx, models.Datacenter{ID: "dc1", Name: "us-west-1"}))
	require.NoError(t, stores.Users.Create(ctx, models.User{ID: "u1", Username: "alice", Organization: "o1"}))
	require.NoError(t, stores.Vpcs.Create(ctx, models.Vpc{ID: "v1", Name: "prod", Network: "10.97.0.0/16"}))

	h, err := New(stores).Handler(zerolog.Nop(), Options{CORSOrigins: []string{"https://console.example.com"}})
	require.NoError(t, err)
	return h, stores
}

func do(t *testing.T, h http.Handler, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	for k, v := range header {
		r.Header[k] = v
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthz(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestList(t *testing.T) {
	h, _ := newTestServer(t)

	t.Run("organizations", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/organizations", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		orgs := decode[[]models.Organization](t, rec)
		require.Len(t, orgs, 1)
		require.Equal(t, "acme", orgs[0].Name)
	})

	t.Run("users", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/users", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, decode[[]models.User](t, rec), 1)
	})

	t.Run("datacenters", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/datacenters", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, decode[[]models.Datacenter](t, rec), 1)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		empty, err := New(memory.NewStores()).Handler(zerolog.Nop(), Options{})
		require.NoError(t, err)

		rec := do(t, empty, http.MethodGet, "/api/vpcs", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `[]`, rec.Body.String())
	})
}

func TestETag(t *testing.T) {
	h, stores := newTestServer(t)

	first := do(t, h, http.MethodGet, "/api/vpcs", "", nil)
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)
	require.Equal(t, "no-cache", first.Header().Get("Cache-Control"))

	again := do(t, h, http.MethodGet, "/api/vpcs", "", http.Header{"If-None-Match": {etag}})
	require.Equal(t, http.StatusNotModified, again.Code)
	require.Empty(t, again.Body.Bytes())

	require.NoError(t, stores.Vpcs.Update(context.Background(), models.Vpc{ID: "v1", Name: "renamed"}))

	changed := do(t, h, http.MethodGet, "/api/vpcs", "", http.Header{"If-None-Match": {etag}})
	require.Equal(t, http.StatusOK, changed.Code)
	require.NotEqual(t, etag, changed.Header().Get("ETag"))
}

func TestEtagMatches(t *testing.T) {
	require.False(t, etagMatches("", `"a"`))
	require.True(t, etagMatches(`"a"`, `"a"`))
	require.True(t, etagMatches(`"b", W/"a"`, `"a"`))
	require.True(t, etagMatches(`*`, `"a"`))
	require.False(t, etagMatches(`"b"`, `"a"`))
}

func TestCreateVpc(t *testing.T) {
	h, stores := newTestServer(t)

	t.Run("assigns id", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/vpcs", `{"name":"dev","network":"10.1.0.0/16","organization":"o1","datacenter":"dc1"}`, nil)
		require.Equal(t, http.StatusCreated, rec.Code)

		vpc := decode[models.Vpc](t, rec)
		require.NotEmpty(t, vpc.ID)
		require.Equal(t, "dev", vpc.Name)

		got, err := stores.Vpcs.Get(context.Background(), vpc.ID)
		require.NoError(t, err)
		require.Equal(t, vpc, got)
	})

	t.Run("invalid network", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/vpcs", `{"name":"dev","network":"10.1.0.1/16"}`, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, decode[errorResponse](t, rec).Error, "host bits set")
	})

	t.Run("unknown organization", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/vpcs", `{"name":"dev","organization":"missing"}`, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/vpcs", `{"name":"dev","mtu":1500}`, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/vpcs", `{`, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateVpc(t *testing.T) {
	h, stores := newTestServer(t)

	t.Run("replaces fields", func(t *testing.T) {
		rec := do(t, h, http.MethodPut, "/api/vpcs/v1", `{"name":"staging","network":"10.2.0.0/16","datacenter":"dc1"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		got, err := stores.Vpcs.Get(context.Background(), "v1")
		require.NoError(t, err)
		require.Equal(t, models.Vpc{ID: "v1", Name: "staging", Network: "10.2.0.0/16", Datacenter: "dc1"}, got)
	})

	t.Run("id mismatch", func(t *testing.T) {
		rec := do(t, h, http.MethodPut, "/api/vpcs/v1", `{"id":"v2","name":"x"}`, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		rec := do(t, h, http.MethodPut, "/api/vpcs/missing", `{"name":"x"}`, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Contains(t, decode[errorResponse](t, rec).Error, "not found")
	})
}

func TestGetAndDeleteVpc(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/vpcs/v1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "prod", decode[models.Vpc](t, rec).Name)

	rec = do(t, h, http.MethodDelete, "/api/vpcs/v1", "", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/vpcs/v1", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/vpcs/v1", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCrossOriginProtection(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodDelete, "/api/vpcs/v1", "", http.Header{
		"Origin":         {"https://evil.example.com"},
		"Sec-Fetch-Site": {"cross-site"},
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/vpcs/v1", "", http.Header{
		"Origin":         {"https://console.example.com"},
		"Sec-Fetch-Site": {"cross-site"},
	})
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodOptions, "/api/vpcs", "", http.Header{
		"Origin":                        {"https://console.example.com"},
		"Access-Control-Request-Method": {http.MethodPost},
	})
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://console.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestGzip(t *testing.T) {
	ctx := context.Background()
	stores := memory.NewStores()
	for i := range 50 {
		name := strings.Repeat("x", 40)
		require.NoError(t, stores.Datacenters.Create(ctx, models.Datacenter{ID: name + string(rune('A'+i)), Name: name}))
	}
	h, err := New(stores).Handler(zerolog.Nop(), Options{})
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/api/datacenters", "", http.Header{"Accept-Encoding": {"gzip"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	require.False(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("[")))
}
