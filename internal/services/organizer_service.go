package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/team-management-api/internal/logger"
	"github.com/yukikurage/team-management-api/internal/models"
	"github.com/yukikurage/team-management-api/internal/repository"
	"github.com/yukikurage/team-management-api/internal/store"
)

// OrganizerService owns the user to tournament organizer relation and keeps
// each tournament's organizer counter in step with it.
type OrganizerService struct {
	organizers  repository.OrganizerRepository
	tournaments repository.TournamentRepository
	users       repository.UserRepository
	safety      *SafetyService
	log         *logger.Logger
}

// NewOrganizerService creates a new OrganizerService.
func NewOrganizerService(repos *repository.Repositories, safety *SafetyService, log *logger.Logger) *OrganizerService {
	return &OrganizerService{
		organizers:  repos.Organizers,
		tournaments: repos.Tournaments,
		users:       repos.Users,
		safety:      safety,
		log:         log,
	}
}

func (s *OrganizerService) findTournament(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.tournaments.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrTournamentNotFound, "tournament")
	}
	return t, nil
}

func (s *OrganizerService) ensureNoRelation(ctx context.Context, userID, tournamentID string) error {
	if _, err := s.organizers.FindByUserAndTournament(ctx, userID, tournamentID); err == nil {
		return ErrAlreadyOrganizer
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to verify organizer relation: %w", err)
	}
	return nil
}

// AddCreator makes userID the first, already active organizer of a tournament.
func (s *OrganizerService) AddCreator(ctx context.Context, tournamentID, userID string) (*models.OrganizerRelation, error) {
	if tournamentID == "" || userID == "" {
		return nil, validationError("tournament id and user id are required")
	}
	if _, err := s.findTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	if err := s.ensureNoRelation(ctx, userID, tournamentID); err != nil {
		return nil, err
	}

	rel := &models.OrganizerRelation{
		ID:           uuid.NewString(),
		UserID:       userID,
		TournamentID: tournamentID,
		CreatedAt:    time.Now().UTC(),
		Active:       true,
	}
	if err := s.organizers.Save(ctx, rel); err != nil {
		return nil, fmt.Errorf("failed to create organizer relation: %w", err)
	}
	s.adjustOrganizerCount(ctx, tournamentID, 1)
	return rel, nil
}

// InviteOrganizer creates a pending relation for the user registered with email.
func (s *OrganizerService) InviteOrganizer(ctx context.Context, tournamentID, email string) (*models.OrganizerRelation, error) {
	email = strings.TrimSpace(email)
	if tournamentID == "" || email == "" {
		return nil, validationError("tournament id and email are required")
	}

	t, err := s.findTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, lookupError(err, ErrUserNotFound, "user")
	}
	if t.Full() {
		return nil, ErrOrganizerCapacityReached
	}
	if err := s.ensureNoRelation(ctx, user.ID, tournamentID); err != nil {
		return nil, err
	}

	rel := &models.OrganizerRelation{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		TournamentID: tournamentID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.organizers.Save(ctx, rel); err != nil {
		return nil, fmt.Errorf("failed to create organizer invite: %w", err)
	}

	s.log.Info("organizer invited", "relation_id", rel.ID, "tournament_id", tournamentID, "user_id", user.ID)
	return rel, nil
}

// GetRelation returns an organizer relation by ID.
func (s *OrganizerService) GetRelation(ctx context.Context, id string) (*models.OrganizerRelation, error) {
	if id == "" {
		return nil, validationError("relation id is required")
	}
	rel, err := s.organizers.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrOrganizerNotFound, "organizer relation")
	}
	return rel, nil
}

// AcceptInvite activates a pending relation. The organizer limit is checked
// again since other invites may have been accepted meanwhile.
func (s *OrganizerService) AcceptInvite(ctx context.Context, id string) (*models.OrganizerRelation, error) {
	rel, err := s.GetRelation(ctx, id)
	if err != nil {
		return nil, err
	}
	if rel.Active {
		return nil, ErrInviteNotPending
	}
	t, err := s.findTournament(ctx, rel.TournamentID)
	if err != nil {
		return nil, err
	}
	if t.Full() {
		return nil, ErrOrganizerCapacityReached
	}

	rel.Active = true
	if err := s.organizers.Save(ctx, rel); err != nil {
		return nil, fmt.Errorf("failed to accept organizer invite: %w", err)
	}
	s.adjustOrganizerCount(ctx, rel.TournamentID, 1)
	return rel, nil
}

// DeclineInvite deletes a pending relation.
func (s *OrganizerService) DeclineInvite(ctx context.Context, id string) error {
	rel, err := s.GetRelation(ctx, id)
	if err != nil {
		return err
	}
	if rel.Active {
		return ErrInviteNotPending
	}
	if err := s.organizers.Delete(ctx, rel.ID); err != nil {
		return lookupError(err, ErrOrganizerNotFound, "organizer relation")
	}
	return nil
}

// RemoveOrganizer deletes the user's relation to the tournament. Removing the
// only active organizer fails with a SafetyViolationError and changes nothing.
func (s *OrganizerService) RemoveOrganizer(ctx context.Context, userID, tournamentID string) error {
	if userID == "" || tournamentID == "" {
		return validationError("user id and tournament id are required")
	}
	rel, err := s.organizers.FindByUserAndTournament(ctx, userID, tournamentID)
	if err != nil {
		return lookupError(err, ErrOrganizerNotFound, "organizer relation")
	}

	if rel.Active {
		result, err := s.safety.CheckOrganizerSafety(ctx, userID, tournamentID, ActionRemoveOrganizer)
		if err != nil {
			return err
		}
		if err := result.Violation(); err != nil {
			return err
		}
	}

	if err := s.organizers.Delete(ctx, rel.ID); err != nil {
		return lookupError(err, ErrOrganizerNotFound, "organizer relation")
	}
	if rel.Active {
		s.adjustOrganizerCount(ctx, tournamentID, -1)
	}

	s.log.Info("organizer removed", "relation_id", rel.ID, "tournament_id", tournamentID, "user_id", userID)
	return nil
}

func (s *OrganizerService) adjustOrganizerCount(ctx context.Context, tournamentID string, delta int) {
	err := s.tournaments.AdjustOrganizerCount(ctx, tournamentID, delta)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.log.Warn("organizer count not updated", "tournament_id", tournamentID, "delta", delta, "error", err)
	}
}

// ListOrganizers lists active and pending relations of a tournament.
func (s *OrganizerService) ListOrganizers(ctx context.Context, tournamentID string) ([]models.OrganizerRelation, error) {
	if tournamentID == "" {
		return nil, validationError("tournament id is required")
	}
	if _, err := s.findTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	rels, err := s.organizers.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizers: %w", err)
	}
	return rels, nil
}

// ListTournamentsOrganizedBy lists tournaments the user actively organizes.
// Relations pointing at deleted tournaments are skipped.
func (s *OrganizerService) ListTournamentsOrganizedBy(ctx context.Context, userID string) ([]models.Tournament, error) {
	if userID == "" {
		return nil, validationError("user id is required")
	}
	rels, err := s.organizers.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizer relations: %w", err)
	}

	tournaments := make([]models.Tournament, 0, len(rels))
	for _, rel := range rels {
		t, err := s.tournaments.FindByID(ctx, rel.TournamentID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to find tournament: %w", err)
		}
		tournaments = append(tournaments, *t)
	}
	return tournaments, nil
}

// ListPendingInvites lists organizer invites awaiting the user's answer.
func (s *OrganizerService) ListPendingInvites(ctx context.Context, userID string) ([]models.OrganizerRelation, error) {
	if userID == "" {
		return nil, validationError("user id is required")
	}
	rels, err := s.organizers.ListPendingByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizer invites: %w", err)
	}
	return rels, nil
}

// purgeByUser builds delete tasks for every relation of a user. Deleting an
// active relation also lowers that tournament's counter.
func (s *OrganizerService) purgeByUser(ctx context.Context, userID string) ([]cascadeTask, error) {
	rels, err := s.organizers.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	tasks := make([]cascadeTask, 0, len(rels))
	for _, rel := range rels {
		task := s.deleteTask(rel.ID)
		if rel.Active {
			tournamentID := rel.TournamentID
			task.after = func(ctx context.Context) error {
				return s.tournaments.AdjustOrganizerCount(ctx, tournamentID, -1)
			}
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// purgeByTournament builds delete tasks for every relation of a tournament.
func (s *OrganizerService) purgeByTournament(ctx context.Context, tournamentID string) ([]cascadeTask, error) {
	rels, err := s.organizers.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	tasks := make([]cascadeTask, 0, len(rels))
	for _, rel := range rels {
		tasks = append(tasks, s.deleteTask(rel.ID))
	}
	return tasks, nil
}

func (s *OrganizerService) deleteTask(id string) cascadeTask {
	return cascadeTask{
		stage:      StageOrganizerRelations,
		collection: repository.CollectionOrganizers,
		id:         id,
		run: func(ctx context.Context) error {
			return s.organizers.Delete(ctx, id)
		},
	}
}
