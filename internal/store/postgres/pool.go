package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool defaults sized for the console API: a handful of admin users issuing
// short list and single row writes.
const (
	DefaultMaxConns          int32 = 10
	DefaultMinConns          int32 = 1
	DefaultMaxConnLifetime   int32 = 30 * 60
	DefaultMaxConnIdleTime   int32 = 5 * 60
	DefaultHealthCheckPeriod int32 = 30
	DefaultConnectTimeout    int32 = 5
)

var errNoConnString = errors.New("connection string is required")

// PoolConfig configures the pool shared by every store. Durations are whole
// seconds so they map directly onto flags and environment variables.
type PoolConfig struct {
	// ConnString is a postgres:// URL or key=value DSN.
	ConnString string

	MaxConns int32
	MinConns int32

	MaxConnLifetime   int32
	MaxConnIdleTime   int32
	HealthCheckPeriod int32
	ConnectTimeout    int32
}

// Validate checks that the pool configuration is valid.
func (c *PoolConfig) Validate() error {
	if c.ConnString == "" {
		return errNoConnString
	}
	if c.MaxConns > 0 && c.MinConns > c.MaxConns {
		return fmt.Errorf("min conns %d exceeds max conns %d", c.MinConns, c.MaxConns)
	}
	return nil
}

// ApplyDefaults fills zero fields with the Default* values.
func (c *PoolConfig) ApplyDefaults() {
	setDefault(&c.MaxConns, DefaultMaxConns)
	setDefault(&c.MinConns, DefaultMinConns)
	setDefault(&c.MaxConnLifetime, DefaultMaxConnLifetime)
	setDefault(&c.MaxConnIdleTime, DefaultMaxConnIdleTime)
	setDefault(&c.HealthCheckPeriod, DefaultHealthCheckPeriod)
	setDefault(&c.ConnectTimeout, DefaultConnectTimeout)
}

func setDefault(v *int32, def int32) {
	if *v == 0 {
		*v = def
	}
}

func seconds(n int32) time.Duration {
	return time.Duration(n) * time.Second
}

// configure parses the connection string and applies the pool settings.
func (c *PoolConfig) configure() (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(c.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	pc.MaxConns = c.MaxConns
	pc.MinConns = c.MinConns
	pc.MaxConnLifetime = seconds(c.MaxConnLifetime)
	pc.MaxConnIdleTime = seconds(c.MaxConnIdleTime)
	pc.HealthCheckPeriod = seconds(c.HealthCheckPeriod)
	pc.ConnConfig.ConnectTimeout = seconds(c.ConnectTimeout)
	return pc, nil
}

// NewPool opens a pool and pings the server. Zero fields of cfg are filled in
// with defaults.
func NewPool(ctx context.Context, cfg *PoolConfig) (*pgxpool.Pool, error) {
	if cfg == nil {
		return nil, errors.New("pool config is required")
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pool config: %w", err)
	}

	pc, err := cfg.configure()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
