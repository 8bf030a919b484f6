package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/cloudconsole/internal/models"
	"github.com/wolfeidau/cloudconsole/internal/store"
)

const userColumns = `id, COALESCE(organization, ''), type, username, email, roles, administrator, disabled, last_active`

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new PostgreSQL-backed user store.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// List returns every user in creation order.
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", mapPostgresError(err))
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.User, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan users: %w", err)
	}
	return result, nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, id string) (models.User, error) {
	user, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, store.ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("failed to get user: %w", mapPostgresError(err))
	}
	return user, nil
}

// Create creates a new user in the database.
func (s *UserStore) Create(ctx context.Context, user models.User) error {
	query := `
		INSERT INTO users (
			id, organization, type, username, email, roles, administrator, disabled, last_active
		) VALUES (
			$1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9
		)
	`

	var lastActive *time.Time
	if user.IsActive() {
		lastActive = &user.LastActive
	}

	userType := user.Type
	if userType == "" {
		userType = models.UserTypeLocal
	}

	_, err := s.pool.Exec(ctx, query,
		user.ID,
		user.Organization,
		userType,
		user.Username,
		user.Email,
		nonNil(user.Roles),
		user.Administrator,
		user.Disabled,
		lastActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("Created user")

	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var (
		user       models.User
		lastActive *time.Time
	)
	err := row.Scan(
		&user.ID,
		&user.Organization,
		&user.Type,
		&user.Username,
		&user.Email,
		&user.Roles,
		&user.Administrator,
		&user.Disabled,
		&lastActive,
	)
	if err != nil {
		return models.User{}, err
	}
	if lastActive != nil {
		user.LastActive = lastActive.UTC()
	}
	return user, nil
}
