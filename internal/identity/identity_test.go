package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-management-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

func setupProvider(t *testing.T) (*StoreProvider, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	return NewStoreProvider(s).WithCost(bcrypt.MinCost), s
}

func TestStoreProvider_CreateAndAuthenticate(t *testing.T) {
	p, s := setupProvider(t)
	ctx := context.Background()

	id, err := p.CreateIdentity(ctx, "Coach@Example.com ", "supersecret")
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, 1, s.Count(Collection))

	got, err := p.Authenticate(ctx, "coach@example.com", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	doc, err := s.Get(ctx, Collection, id)
	require.NoError(t, err)
	assert.NotEqual(t, "supersecret", doc["passwordHash"])
}

func TestStoreProvider_DuplicateEmail(t *testing.T) {
	p, _ := setupProvider(t)
	ctx := context.Background()

	_, err := p.CreateIdentity(ctx, "coach@example.com", "supersecret")
	require.NoError(t, err)

	_, err = p.CreateIdentity(ctx, "COACH@example.com", "othersecret")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestStoreProvider_AuthenticateFailures(t *testing.T) {
	p, _ := setupProvider(t)
	ctx := context.Background()

	_, err := p.CreateIdentity(ctx, "coach@example.com", "supersecret")
	require.NoError(t, err)

	_, err = p.Authenticate(ctx, "coach@example.com", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.Authenticate(ctx, "nobody@example.com", "supersecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestStoreProvider_DeleteIdentity(t *testing.T) {
	p, s := setupProvider(t)
	ctx := context.Background()

	id, err := p.CreateIdentity(ctx, "coach@example.com", "supersecret")
	require.NoError(t, err)

	require.NoError(t, p.DeleteIdentity(ctx, id))
	assert.Equal(t, 0, s.Count(Collection))
	assert.ErrorIs(t, p.DeleteIdentity(ctx, id), ErrNotFound)

	_, err = p.Authenticate(ctx, "coach@example.com", "supersecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
