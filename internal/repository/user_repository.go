package repository

import (
	"context"
	"strings"

	"github.com/yukikurage/team-management-api/internal/models"
	"github.com/yukikurage/team-management-api/internal/store"
)

// StoreUserRepository is a document store implementation of UserRepository
type StoreUserRepository struct {
	users collection[models.User]
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(s store.Store) UserRepository {
	codec := store.NewCodec[models.User](CollectionUsers, 1)
	return &StoreUserRepository{users: newCollection(s, codec)}
}

func (r *StoreUserRepository) Save(ctx context.Context, user *models.User) error {
	return r.users.put(ctx, user.ID, user)
}

func (r *StoreUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.users.get(ctx, id)
}

// FindByEmail matches the lower-cased email the profile was saved with.
func (r *StoreUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.users.first(ctx, store.Eq("email", strings.ToLower(strings.TrimSpace(email))))
}

func (r *StoreUserRepository) Delete(ctx context.Context, id string) error {
	return r.users.delete(ctx, id)
}
