package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/team-management-api/internal/logger"
	"github.com/yukikurage/team-management-api/internal/models"
	"github.com/yukikurage/team-management-api/internal/repository"
)

// TournamentService creates tournaments and registers teams for them.
type TournamentService struct {
	tournaments   repository.TournamentRepository
	teams         repository.TeamRepository
	organizers    *OrganizerService
	maxOrganizers int
	log           *logger.Logger
}

// NewTournamentService creates a new TournamentService. maxOrganizers is the
// default organizer limit of new tournaments.
func NewTournamentService(repos *repository.Repositories, organizers *OrganizerService, maxOrganizers int, log *logger.Logger) *TournamentService {
	return &TournamentService{
		tournaments:   repos.Tournaments,
		teams:         repos.Teams,
		organizers:    organizers,
		maxOrganizers: max(maxOrganizers, 1),
		log:           log,
	}
}

// CreateTournamentInput represents parameters to create a new tournament.
// A zero MaxOrganizers uses the configured default.
type CreateTournamentInput struct {
	Name          string
	CreatorID     string
	MaxOrganizers int
}

// CreateTournament creates a tournament with its creator as the first active organizer.
func (s *TournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("tournament name cannot be empty")
	}
	if input.CreatorID == "" {
		return nil, validationError("creator id is required")
	}
	if input.MaxOrganizers < 0 {
		return nil, validationError("max organizers cannot be negative")
	}
	limit := input.MaxOrganizers
	if limit == 0 {
		limit = s.maxOrganizers
	}

	t := &models.Tournament{
		ID:            uuid.NewString(),
		Name:          name,
		MaxOrganizers: limit,
		TeamIDs:       []string{},
		CreatedBy:     input.CreatorID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.tournaments.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	if _, err := s.organizers.AddCreator(ctx, t.ID, input.CreatorID); err != nil {
		if delErr := s.tournaments.Delete(ctx, t.ID); delErr != nil {
			s.log.Warn("tournament left without organizer", "tournament_id", t.ID, "error", delErr)
		}
		return nil, fmt.Errorf("failed to add tournament creator: %w", err)
	}
	t.OrganizerCount = 1

	s.log.Info("tournament created", "tournament_id", t.ID, "creator_id", input.CreatorID)
	return t, nil
}

// GetTournament returns a tournament by ID.
func (s *TournamentService) GetTournament(ctx context.Context, id string) (*models.Tournament, error) {
	if id == "" {
		return nil, validationError("tournament id is required")
	}
	t, err := s.tournaments.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrTournamentNotFound, "tournament")
	}
	return t, nil
}

// RegisterTeam links an active team and a tournament in both directions.
func (s *TournamentService) RegisterTeam(ctx context.Context, tournamentID, teamID string) (*models.Tournament, error) {
	if tournamentID == "" || teamID == "" {
		return nil, validationError("tournament id and team id are required")
	}
	t, err := s.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, lookupError(err, ErrTeamNotFound, "team")
	}
	if !team.Active {
		return nil, ErrTeamNotFound
	}
	if slices.Contains(t.TeamIDs, teamID) {
		return nil, ErrTeamAlreadyRegistered
	}

	t.TeamIDs = append(t.TeamIDs, teamID)
	if err := s.tournaments.SetTeamIDs(ctx, tournamentID, t.TeamIDs); err != nil {
		return nil, fmt.Errorf("failed to register team: %w", err)
	}
	if !slices.Contains(team.TournamentIDs, tournamentID) {
		if err := s.teams.SetTournamentIDs(ctx, teamID, append(team.TournamentIDs, tournamentID)); err != nil {
			return nil, fmt.Errorf("failed to link tournament to team: %w", err)
		}
	}
	return t, nil
}
