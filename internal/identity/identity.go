// Package identity holds login credentials. Profiles live in the users
// collection under the same id; deleting one never deletes the other.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/team-management-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// Collection is where StoreProvider keeps credential records.
const Collection = "identities"

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("identity not found")
)

// Provider creates, verifies and deletes login identities.
type Provider interface {
	// CreateIdentity registers email with password and returns the new id.
	CreateIdentity(ctx context.Context, email, password string) (string, error)

	// DeleteIdentity removes an identity, or returns ErrNotFound.
	DeleteIdentity(ctx context.Context, id string) error

	// Authenticate returns the id of the identity matching the credentials.
	Authenticate(ctx context.Context, email, password string) (string, error)
}

type record struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// StoreProvider keeps bcrypt-hashed credentials in the document store.
type StoreProvider struct {
	store store.Store
	codec *store.Codec[record]
	cost  int
}

// NewStoreProvider creates a StoreProvider.
func NewStoreProvider(s store.Store) *StoreProvider {
	return &StoreProvider{
		store: s,
		codec: store.NewCodec[record](Collection, 1),
		cost:  bcrypt.DefaultCost,
	}
}

// WithCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (p *StoreProvider) WithCost(cost int) *StoreProvider {
	p.cost = cost
	return p
}

func (p *StoreProvider) CreateIdentity(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if _, err := p.findByEmail(ctx, email); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	rec := &record{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	doc, err := p.codec.Encode(rec)
	if err != nil {
		return "", err
	}
	if err := p.store.Set(ctx, Collection, rec.ID, doc); err != nil {
		return "", fmt.Errorf("failed to create identity: %w", err)
	}
	return rec.ID, nil
}

func (p *StoreProvider) DeleteIdentity(ctx context.Context, id string) error {
	if err := p.store.Delete(ctx, Collection, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete identity: %w", err)
	}
	return nil
}

func (p *StoreProvider) Authenticate(ctx context.Context, email, password string) (string, error) {
	rec, err := p.findByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return rec.ID, nil
}

func (p *StoreProvider) findByEmail(ctx context.Context, email string) (*record, error) {
	docs, err := p.store.Query(ctx, Collection, store.Query{
		Where: []store.Predicate{store.Eq("email", email)},
		Limit: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return p.codec.Decode(docs[0])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
