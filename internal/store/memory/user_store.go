package memory

import (
	"context"
	"fmt"

	"github.com/wolfeidau/cloudconsole/internal/models"
	"github.com/wolfeidau/cloudconsole/internal/store"
)

// UserStore implements store.UserStore using in-memory storage.
type UserStore struct {
	items *collection[models.User]
	orgs  *OrganizationStore
}

// NewUserStore creates a user store that checks organization references
// against orgs.
func NewUserStore(orgs *OrganizationStore) *UserStore {
	return &UserStore{
		items: newCollection[models.User](store.ErrUserNotFound),
		orgs:  orgs,
	}
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	return s.items.list(), nil
}

func (s *UserStore) Get(ctx context.Context, id string) (models.User, error) {
	return s.items.get(id)
}

func (s *UserStore) Create(ctx context.Context, user models.User) error {
	if user.Organization != "" && !s.orgs.items.exists(user.Organization) {
		return fmt.Errorf("%w: organization %s", store.ErrInvalidReference, user.Organization)
	}
	return s.items.create(user)
}
