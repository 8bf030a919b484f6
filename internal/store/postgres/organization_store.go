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

// OrganizationStore implements store.OrganizationStore using PostgreSQL.
type OrganizationStore struct {
	pool *pgxpool.Pool
}

// NewOrganizationStore creates a new PostgreSQL-backed organization store.
// It shares the connection pool with other stores.
func NewOrganizationStore(pool *pgxpool.Pool) *OrganizationStore {
	return &OrganizationStore{
		pool: pool,
	}
}

// List returns every organization in creation order.
func (s *OrganizationStore) List(ctx context.Context) ([]models.Organization, error) {
	query := `
		SELECT id, name, roles
		FROM organizations
		ORDER BY created_at, id
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var result []models.Organization
	for rows.Next() {
		var org models.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.Roles); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		result = append(result, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate organizations: %w", err)
	}

	return result, nil
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, id string) (models.Organization, error) {
	query := `
		SELECT id, name, roles
		FROM organizations
		WHERE id = $1
	`

	var org models.Organization
	err := s.pool.QueryRow(ctx, query, id).Scan(&org.ID, &org.Name, &org.Roles)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Organization{}, store.ErrOrganizationNotFound
		}
		return models.Organization{}, fmt.Errorf("failed to get organization: %w", mapPostgresError(err))
	}

	return org, nil
}

// Create creates a new organization in the database.
func (s *OrganizationStore) Create(ctx context.Context, org models.Organization) error {
	query := `
		INSERT INTO organizations (id, name, roles)
		VALUES ($1, $2, $3)
	`

	_, err := s.pool.Exec(ctx, query, org.ID, org.Name, nonNil(org.Roles))
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("org_id", org.ID).
		Str("name", org.Name).
		Msg("Created organization")

	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
