package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/cloudconsole/internal/models"
	"github.com/wolfeidau/cloudconsole/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var errDecode = errors.New("invalid response body")

// Config holds common client configuration
type Config struct {
	ServerURL string
	Timeout   time.Duration

	// CacheDir stores cached GET responses on disk. Empty keeps them in memory.
	CacheDir string

	// MaxRetries bounds GET attempts after the first one.
	MaxRetries uint

	// InitialInterval is the first retry delay.
	InitialInterval time.Duration

	// Tracing instruments outgoing requests with OpenTelemetry.
	Tracing bool

	// Transport replaces http.DefaultTransport under the cache.
	Transport http.RoundTripper
}

// DefaultConfig returns a default client configuration
func DefaultConfig() Config {
	return Config{
		ServerURL:       "http://localhost:8080",
		Timeout:         30 * time.Second,
		MaxRetries:      3,
		InitialInterval: 200 * time.Millisecond,
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether retrying the request may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client calls the console JSON API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	cfg     Config
	metrics *telemetry.Metrics
}

// New creates a client for cfg.ServerURL.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.ServerURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", cfg.ServerURL)
	}

	rt := cfg.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	if cfg.Tracing {
		rt = otelhttp.NewTransport(rt)
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = DefaultConfig().InitialInterval
	}

	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: NewCachingTransport(cfg.CacheDir, rt),
		},
		cfg:     cfg,
		metrics: telemetry.GetMetrics(),
	}, nil
}

func (c *Client) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	return getJSON[[]models.Organization](ctx, c, "/api/organizations")
}

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	return getJSON[[]models.User](ctx, c, "/api/users")
}

func (c *Client) ListDatacenters(ctx context.Context) ([]models.Datacenter, error) {
	return getJSON[[]models.Datacenter](ctx, c, "/api/datacenters")
}

func (c *Client) ListVpcs(ctx context.Context) ([]models.Vpc, error) {
	return getJSON[[]models.Vpc](ctx, c, "/api/vpcs")
}

// GetVpc fetches a single VPC.
func (c *Client) GetVpc(ctx context.Context, id string) (models.Vpc, error) {
	return getJSON[models.Vpc](ctx, c, "/api/vpcs/"+url.PathEscape(id))
}

// CreateVpc creates vpc and returns it with its server assigned ID.
func (c *Client) CreateVpc(ctx context.Context, vpc models.Vpc) (models.Vpc, error) {
	var created models.Vpc
	err := c.send(ctx, http.MethodPost, "/api/vpcs", vpc, &created)
	return created, err
}

// UpdateVpc replaces the VPC with vpc.ID.
func (c *Client) UpdateVpc(ctx context.Context, vpc models.Vpc) (models.Vpc, error) {
	if vpc.ID == "" {
		return models.Vpc{}, errors.New("vpc id is required")
	}
	var updated models.Vpc
	err := c.send(ctx, http.MethodPut, "/api/vpcs/"+url.PathEscape(vpc.ID), vpc, &updated)
	return updated, err
}

// DeleteVpc deletes the VPC with id.
func (c *Client) DeleteVpc(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/api/vpcs/"+url.PathEscape(id), nil, nil)
}

// getJSON fetches path, retrying network errors and 5xx responses with
// exponential backoff.
func getJSON[T any](ctx context.Context, c *Client, path string) (T, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialInterval

	attrs := metric.WithAttributes(attribute.String("method", http.MethodGet), attribute.String("path", path))

	operation := func() (T, error) {
		var out T

		req, err := c.newRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return out, backoff.Permanent(err)
		}

		err = c.do(req, &out)
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Temporary() || errors.Is(err, errDecode) {
			return out, backoff.Permanent(err)
		}
		return out, err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(c.cfg.MaxRetries+1),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.metrics.ClientRetriesTotal.Add(ctx, 1, attrs)
			log.Debug().Err(err).Str("path", path).Dur("next", next).Msg("Retrying request")
		}),
	)
}

// send runs a mutation once. Mutations are never retried.
func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, r)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	c.metrics.ClientRequestsTotal.Add(req.Context(), 1, metric.WithAttributes(
		attribute.String("method", req.Method),
		attribute.Int("status", status),
	))

	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Bool("cached", FromCache(resp)).
		Msg("API request")

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w from %s: %w", errDecode, req.URL.Path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		apiErr.Message = body.Error
	}
	return apiErr
}
