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

const vpcColumns = `id, name, network, COALESCE(organization, ''), COALESCE(datacenter, '')`

// VpcStore implements store.VpcStore using PostgreSQL.
type VpcStore struct {
	pool *pgxpool.Pool
}

// NewVpcStore creates a new PostgreSQL-backed VPC store.
func NewVpcStore(pool *pgxpool.Pool) *VpcStore {
	return &VpcStore{pool: pool}
}

// List returns every VPC in creation order.
func (s *VpcStore) List(ctx context.Context) ([]models.Vpc, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+vpcColumns+` FROM vpcs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list vpcs: %w", mapPostgresError(err))
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Vpc, error) {
		return scanVpc(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan vpcs: %w", err)
	}
	return result, nil
}

// Get retrieves a VPC by ID.
func (s *VpcStore) Get(ctx context.Context, id string) (models.Vpc, error) {
	vpc, err := scanVpc(s.pool.QueryRow(ctx, `SELECT `+vpcColumns+` FROM vpcs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Vpc{}, store.ErrVpcNotFound
		}
		return models.Vpc{}, fmt.Errorf("failed to get vpc: %w", mapPostgresError(err))
	}
	return vpc, nil
}

// Create creates a new VPC in the database.
func (s *VpcStore) Create(ctx context.Context, vpc models.Vpc) error {
	query := `
		INSERT INTO vpcs (id, name, network, organization, datacenter)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
	`

	_, err := s.pool.Exec(ctx, query, vpc.ID, vpc.Name, vpc.Network, vpc.Organization, vpc.Datacenter)
	if err != nil {
		return fmt.Errorf("failed to create vpc: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("vpc_id", vpc.ID).
		Str("name", vpc.Name).
		Msg("Created vpc")

	return nil
}

// Update replaces an existing VPC.
func (s *VpcStore) Update(ctx context.Context, vpc models.Vpc) error {
	query := `
		UPDATE vpcs SET
			name = $2,
			network = $3,
			organization = NULLIF($4, ''),
			datacenter = NULLIF($5, ''),
			updated_at = now()
		WHERE id = $1
	`

	result, err := s.pool.Exec(ctx, query, vpc.ID, vpc.Name, vpc.Network, vpc.Organization, vpc.Datacenter)
	if err != nil {
		return fmt.Errorf("failed to update vpc: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrVpcNotFound
	}

	log.Debug().
		Str("vpc_id", vpc.ID).
		Msg("Updated vpc")

	return nil
}

// Delete deletes a VPC by ID.
func (s *VpcStore) Delete(ctx context.Context, id string) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM vpcs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vpc: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrVpcNotFound
	}

	log.Info().
		Str("vpc_id", id).
		Msg("Deleted vpc")

	return nil
}

func scanVpc(row pgx.Row) (models.Vpc, error) {
	var vpc models.Vpc
	err := row.Scan(&vpc.ID, &vpc.Name, &vpc.Network, &vpc.Organization, &vpc.Datacenter)
	return vpc, err
}
