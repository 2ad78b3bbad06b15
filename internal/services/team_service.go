package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/team-management-api/internal/logger"
	"github.com/yukikurage/team-management-api/internal/models"
	"github.com/yukikurage/team-management-api/internal/repository"
)

// TeamService creates teams and reads team documents.
type TeamService struct {
	teams       repository.TeamRepository
	users       repository.UserRepository
	dependents  repository.DependentRepository
	memberships *MembershipService
	log         *logger.Logger
}

// NewTeamService creates a new TeamService.
func NewTeamService(repos *repository.Repositories, memberships *MembershipService, log *logger.Logger) *TeamService {
	return &TeamService{
		teams:       repos.Teams,
		users:       repos.Users,
		dependents:  repos.Dependents,
		memberships: memberships,
		log:         log,
	}
}

// CreateTeamInput represents parameters to create a new team.
type CreateTeamInput struct {
	Name      string
	CreatorID string
}

// CreateTeam creates a team with its creator as the first accepted coach and
// opens the team chat room.
func (s *TeamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("team name cannot be empty")
	}
	if input.CreatorID == "" {
		return nil, validationError("creator id is required")
	}
	if _, err := s.users.FindByID(ctx, input.CreatorID); err != nil {
		return nil, lookupError(err, ErrUserNotFound, "user")
	}

	now := time.Now().UTC()
	team := &models.Team{
		ID:            uuid.NewString(),
		Name:          name,
		Active:        true,
		CreatedBy:     input.CreatorID,
		TournamentIDs: []string{},
		CreatedAt:     now,
	}
	if err := s.teams.Save(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	_, err := s.memberships.AddMembership(ctx, AddMembershipInput{
		UserID:   input.CreatorID,
		TeamID:   team.ID,
		Role:     models.RoleCoach,
		TeamMeta: &TeamMeta{Name: name},
	})
	if err != nil {
		if delErr := s.teams.Delete(ctx, team.ID); delErr != nil {
			s.log.Warn("team left without coach", "team_id", team.ID, "error", delErr)
		}
		return nil, fmt.Errorf("failed to add team creator: %w", err)
	}
	team.CoachCount = 1

	room := &models.ChatRoom{ID: uuid.NewString(), TeamID: team.ID, Name: name, CreatedAt: now}
	if err := s.dependents.SaveChatRoom(ctx, room); err != nil {
		s.log.Warn("team chat room not created", "team_id", team.ID, "error", err)
	}

	s.log.Info("team created", "team_id", team.ID, "creator_id", input.CreatorID)
	return team, nil
}

// GetTeam returns a team by ID.
func (s *TeamService) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	if id == "" {
		return nil, validationError("team id is required")
	}
	team, err := s.teams.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrTeamNotFound, "team")
	}
	return team, nil
}
