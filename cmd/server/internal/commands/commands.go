package commands

import (
	"errors"
	"time"

	postgresstore "github.com/wolfeidau/cloudconsole/internal/store/postgres"
	"github.com/wolfeidau/cloudconsole/internal/util"
)

type Globals struct {
	Debug   bool
	Version string
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32         `help:"maximum number of connections in pool" default:"10"`
	MinConns        int32         `help:"minimum number of connections in pool" default:"1"`
	MaxConnLifetime time.Duration `help:"maximum connection lifetime" default:"30m"`
	MaxConnIdleTime time.Duration `help:"maximum connection idle time" default:"5m"`
}

func (s *PostgresStoreFlags) Validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

func (s *PostgresStoreFlags) poolConfig() *postgresstore.PoolConfig {
	return &postgresstore.PoolConfig{
		ConnString:      s.ConnString,
		MaxConns:        s.MaxConns,
		MinConns:        s.MinConns,
		MaxConnLifetime: util.Seconds(s.MaxConnLifetime),
		MaxConnIdleTime: util.Seconds(s.MaxConnIdleTime),
	}
}
