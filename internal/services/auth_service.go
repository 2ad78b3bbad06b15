package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/yukikurage/team-management-api/internal/constants"
	"github.com/yukikurage/team-management-api/internal/identity"
	"github.com/yukikurage/team-management-api/internal/logger"
	"github.com/yukikurage/team-management-api/internal/models"
	"github.com/yukikurage/team-management-api/internal/repository"
)

var (
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooShort   = errors.New("password too short")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	identities identity.Provider
	users      repository.UserRepository
	log        *logger.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(identities identity.Provider, users repository.UserRepository, log *logger.Logger) *AuthService {
	return &AuthService{
		identities: identities,
		users:      users,
		log:        log,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Email       string
	Password    string
	DisplayName string
}

// Signup creates the login identity and the profile that shares its id.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(input.Email))
	if err != nil {
		return nil, validationError("invalid email address")
	}
	email := strings.ToLower(addr.Address)
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = email
	}

	id, err := s.identities.CreateIdentity(ctx, email, input.Password)
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	user := &models.User{
		ID:          id,
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.users.Save(ctx, user); err != nil {
		if delErr := s.identities.DeleteIdentity(ctx, id); delErr != nil {
			s.log.Warn("identity left without profile", "user_id", id, "error", delErr)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	id, err := s.identities.Authenticate(ctx, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	return s.GetUser(ctx, id)
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, validationError("user id is required")
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrUserNotFound, "user")
	}
	return user, nil
}
