package repository

import (
	"context"
	"time"

	"github.com/yukikurage/team-management-api/internal/models"
	"github.com/yukikurage/team-management-api/internal/store"
)

// Collection names in the document store.
const (
	CollectionMemberships    = "memberships"
	CollectionOrganizers     = "organizers"
	CollectionTeams          = "teams"
	CollectionTournaments    = "tournaments"
	CollectionUsers          = "users"
	CollectionChatRooms      = "chat_rooms"
	CollectionChatMessages   = "chat_messages"
	CollectionAvailabilities = "availabilities"
	CollectionTasks          = "tasks"
	CollectionEvents         = "events"
)

// Page bounds a list query. A zero Limit returns everything.
type Page struct {
	Limit  int
	Offset int
}

// All repositories return store.ErrNotFound for absent documents and wrap
// store.ErrUnavailable for transport failures.

// MembershipRepository defines the interface for membership data access
type MembershipRepository interface {
	// Save creates or replaces a membership
	Save(ctx context.Context, m *models.Membership) error

	// FindByID finds a membership by ID
	FindByID(ctx context.Context, id string) (*models.Membership, error)

	// FindByUserAndTeam finds the membership binding a user to a team
	FindByUserAndTeam(ctx context.Context, userID, teamID string) (*models.Membership, error)

	// ListByUser lists a user's memberships ordered by team
	ListByUser(ctx context.Context, userID string, page Page) ([]models.Membership, error)

	// ListByTeam lists a team's memberships ordered by join time
	ListByTeam(ctx context.Context, teamID string, page Page) ([]models.Membership, error)

	// ListCoachesByTeam lists active, accepted coach memberships of a team
	ListCoachesByTeam(ctx context.Context, teamID string) ([]models.Membership, error)

	// ListCoachesByUser lists active, accepted coach memberships held by a user
	ListCoachesByUser(ctx context.Context, userID string) ([]models.Membership, error)

	// Delete deletes a membership
	Delete(ctx context.Context, id string) error
}

// OrganizerRepository defines the interface for organizer relation data access
type OrganizerRepository interface {
	// Save creates or replaces a relation
	Save(ctx context.Context, rel *models.OrganizerRelation) error

	// FindByID finds a relation by ID
	FindByID(ctx context.Context, id string) (*models.OrganizerRelation, error)

	// FindByUserAndTournament finds the relation binding a user to a tournament
	FindByUserAndTournament(ctx context.Context, userID, tournamentID string) (*models.OrganizerRelation, error)

	// ListByTournament lists every relation of a tournament, pending ones included
	ListByTournament(ctx context.Context, tournamentID string) ([]models.OrganizerRelation, error)

	// ListActiveByTournament lists accepted organizers of a tournament
	ListActiveByTournament(ctx context.Context, tournamentID string) ([]models.OrganizerRelation, error)

	// ListByUser lists every relation of a user, pending ones included
	ListByUser(ctx context.Context, userID string) ([]models.OrganizerRelation, error)

	// ListActiveByUser lists the relations through which a user organizes tournaments
	ListActiveByUser(ctx context.Context, userID string) ([]models.OrganizerRelation, error)

	// ListPendingByUser lists a user's unanswered organizer invites
	ListPendingByUser(ctx context.Context, userID string) ([]models.OrganizerRelation, error)

	// Delete deletes a relation
	Delete(ctx context.Context, id string) error
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// Save creates or replaces a team
	Save(ctx context.Context, team *models.Team) error

	// FindByID finds a team by ID
	FindByID(ctx context.Context, id string) (*models.Team, error)

	// AdjustCoachCount adds delta to the coach counter, never going below zero
	AdjustCoachCount(ctx context.Context, id string, delta int) error

	// Deactivate marks a team terminated
	Deactivate(ctx context.Context, id string, at time.Time) error

	// SetTournamentIDs replaces the team's tournament links
	SetTournamentIDs(ctx context.Context, id string, tournamentIDs []string) error

	// Delete deletes a team document
	Delete(ctx context.Context, id string) error
}

// TournamentRepository defines the interface for tournament data access
type TournamentRepository interface {
	// Save creates or replaces a tournament
	Save(ctx context.Context, t *models.Tournament) error

	// FindByID finds a tournament by ID
	FindByID(ctx context.Context, id string) (*models.Tournament, error)

	// AdjustOrganizerCount adds delta to the organizer counter, never going below one
	AdjustOrganizerCount(ctx context.Context, id string, delta int) error

	// SetTeamIDs replaces the tournament's registered teams
	SetTeamIDs(ctx context.Context, id string, teamIDs []string) error

	// Delete deletes a tournament
	Delete(ctx context.Context, id string) error
}

// UserRepository defines the interface for profile data access
type UserRepository interface {
	// Save creates or replaces a profile
	Save(ctx context.Context, user *models.User) error

	// FindByID finds a profile by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a profile by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// Delete deletes a profile
	Delete(ctx context.Context, id string) error
}

// DependentRepository defines data access for team-owned records
type DependentRepository interface {
	SaveChatRoom(ctx context.Context, room *models.ChatRoom) error
	SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error
	SaveAvailability(ctx context.Context, a *models.Availability) error
	SaveTask(ctx context.Context, task *models.Task) error
	SaveEvent(ctx context.Context, event *models.Event) error

	// ListIDs returns the ids of documents in collection whose field equals value
	ListIDs(ctx context.Context, collection, field, value string) ([]string, error)

	// Delete deletes one document from collection
	Delete(ctx context.Context, collection, id string) error
}

// Repositories bundles every repository over one store.
type Repositories struct {
	Memberships MembershipRepository
	Organizers  OrganizerRepository
	Teams       TeamRepository
	Tournaments TournamentRepository
	Users       UserRepository
	Dependents  DependentRepository
}

// New builds every repository over s.
func New(s store.Store) *Repositories {
	return &Repositories{
		Memberships: NewMembershipRepository(s),
		Organizers:  NewOrganizerRepository(s),
		Teams:       NewTeamRepository(s),
		Tournaments: NewTournamentRepository(s),
		Users:       NewUserRepository(s),
		Dependents:  NewDependentRepository(s),
	}
}
