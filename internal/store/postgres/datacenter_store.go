package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/cloudconsole/internal/models"
	"github.com/wolfeidau/cloudconsole/internal/store"
)

// DatacenterStore implements store.DatacenterStore using PostgreSQL.
type DatacenterStore struct {
	pool *pgxpool.Pool
}

func NewDatacenterStore(pool *pgxpool.Pool) *DatacenterStore {
	return &DatacenterStore{pool: pool}
}

func (s *DatacenterStore) List(ctx context.Context) ([]models.Datacenter, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM datacenters ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list datacenters: %w", mapPostgresError(err))
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Datacenter, error) {
		var dc models.Datacenter
		err := row.Scan(&dc.ID, &dc.Name)
		return dc, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan datacenters: %w", err)
	}
	return result, nil
}

func (s *DatacenterStore) Get(ctx context.Context, id string) (models.Datacenter, error) {
	var dc models.Datacenter
	err := s.pool.QueryRow(ctx, `SELECT id, name FROM datacenters WHERE id = $1`, id).Scan(&dc.ID, &dc.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Datacenter{}, store.ErrDatacenterNotFound
		}
		return models.Datacenter{}, fmt.Errorf("failed to get datacenter: %w", mapPostgresError(err))
	}
	return dc, nil
}

func (s *DatacenterStore) Create(ctx context.Context, dc models.Datacenter) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO datacenters (id, name) VALUES ($1, $2)`, dc.ID, dc.Name)
	if err != nil {
		return fmt.Errorf("failed to create datacenter: %w", mapPostgresError(err))
	}

	log.Debug().Str("datacenter_id", dc.ID).Msg("Created datacenter")
	return nil
}
