package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/team-management-api/internal/logger"
	"github.com/yukikurage/team-management-api/internal/models"
	"github.com/yukikurage/team-management-api/internal/repository"
	"github.com/yukikurage/team-management-api/internal/store"
	"golang.org/x/sync/errgroup"
)

// MembershipService owns the user to team relation and keeps each team's
// coach counter in step with it.
type MembershipService struct {
	memberships repository.MembershipRepository
	teams       repository.TeamRepository
	users       repository.UserRepository
	safety      *SafetyService
	log         *logger.Logger
	concurrency int
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(repos *repository.Repositories, safety *SafetyService, log *logger.Logger, concurrency int) *MembershipService {
	return &MembershipService{
		memberships: repos.Memberships,
		teams:       repos.Teams,
		users:       repos.Users,
		safety:      safety,
		log:         log,
		concurrency: max(concurrency, 1),
	}
}

// TeamMeta marks a membership created together with its team. Such a
// membership is accepted immediately.
type TeamMeta struct {
	Name string
}

// AddMembershipInput represents parameters to add a user to a team.
type AddMembershipInput struct {
	UserID   string
	TeamID   string
	Role     models.Role
	TeamMeta *TeamMeta
}

// MembershipWithProfile is a membership joined with its user's profile.
// Profile is nil when the profile document is missing.
type MembershipWithProfile struct {
	models.Membership
	Profile *models.User `json:"profile"`
}

// AddMembership creates an accepted membership on the team-creation path and
// a pending invite otherwise.
func (s *MembershipService) AddMembership(ctx context.Context, input AddMembershipInput) (*models.Membership, error) {
	if input.UserID == "" || input.TeamID == "" {
		return nil, validationError("user id and team id are required")
	}
	if !input.Role.Valid() {
		return nil, validationError("invalid role %q", input.Role)
	}

	team, err := s.teams.FindByID(ctx, input.TeamID)
	if err != nil {
		return nil, lookupError(err, ErrTeamNotFound, "team")
	}
	if !team.Active {
		return nil, ErrTeamNotFound
	}
	if _, err := s.users.FindByID(ctx, input.UserID); err != nil {
		return nil, lookupError(err, ErrUserNotFound, "user")
	}

	if _, err := s.memberships.FindByUserAndTeam(ctx, input.UserID, input.TeamID); err == nil {
		return nil, ErrAlreadyTeamMember
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	accepted := input.TeamMeta != nil
	m := &models.Membership{
		ID:             uuid.NewString(),
		UserID:         input.UserID,
		TeamID:         input.TeamID,
		Role:           input.Role,
		JoinedAt:       time.Now().UTC(),
		Active:         accepted,
		InviteAccepted: accepted,
	}
	if err := s.memberships.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}
	if m.CountsAsCoach() {
		s.adjustCoachCount(ctx, m.TeamID, 1)
	}

	s.log.Info("membership added", "membership_id", m.ID, "team_id", m.TeamID, "user_id", m.UserID, "role", m.Role, "accepted", accepted)
	return m, nil
}

// GetMembership returns a membership by ID.
func (s *MembershipService) GetMembership(ctx context.Context, id string) (*models.Membership, error) {
	if id == "" {
		return nil, validationError("membership id is required")
	}
	m, err := s.memberships.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrMembershipNotFound, "membership")
	}
	return m, nil
}

// AcceptInvite moves a pending membership to accepted.
func (s *MembershipService) AcceptInvite(ctx context.Context, id string) (*models.Membership, error) {
	m, err := s.GetMembership(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.Pending() {
		return nil, ErrInviteNotPending
	}

	team, err := s.teams.FindByID(ctx, m.TeamID)
	if err != nil {
		return nil, lookupError(err, ErrTeamNotFound, "team")
	}
	if !team.Active {
		return nil, ErrTeamNotFound
	}

	m.Active = true
	m.InviteAccepted = true
	m.JoinedAt = time.Now().UTC()
	if err := s.memberships.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to accept invite: %w", err)
	}
	if m.CountsAsCoach() {
		s.adjustCoachCount(ctx, m.TeamID, 1)
	}
	return m, nil
}

// DeclineInvite deletes a pending membership.
func (s *MembershipService) DeclineInvite(ctx context.Context, id string) error {
	m, err := s.GetMembership(ctx, id)
	if err != nil {
		return err
	}
	if !m.Pending() {
		return ErrInviteNotPending
	}
	if err := s.memberships.Delete(ctx, m.ID); err != nil {
		return lookupError(err, ErrMembershipNotFound, "membership")
	}
	return nil
}

// RemoveMembership removes the user from the team. Removing the last accepted
// coach fails with a SafetyViolationError and changes nothing.
func (s *MembershipService) RemoveMembership(ctx context.Context, userID, teamID string) error {
	if userID == "" || teamID == "" {
		return validationError("user id and team id are required")
	}
	m, err := s.memberships.FindByUserAndTeam(ctx, userID, teamID)
	if err != nil {
		return lookupError(err, ErrMembershipNotFound, "membership")
	}
	return s.remove(ctx, m)
}

// RemoveMembershipByID is RemoveMembership addressed by membership ID.
func (s *MembershipService) RemoveMembershipByID(ctx context.Context, id string) error {
	m, err := s.GetMembership(ctx, id)
	if err != nil {
		return err
	}
	return s.remove(ctx, m)
}

func (s *MembershipService) remove(ctx context.Context, m *models.Membership) error {
	wasCoach := m.CountsAsCoach()
	if wasCoach {
		result, err := s.safety.CheckCoachSafety(ctx, m.UserID, ActionLeaveTeam, m.TeamID)
		if err != nil {
			return err
		}
		if err := result.Violation(); err != nil {
			return err
		}
	}

	if err := s.memberships.Delete(ctx, m.ID); err != nil {
		return lookupError(err, ErrMembershipNotFound, "membership")
	}
	if wasCoach {
		s.adjustCoachCount(ctx, m.TeamID, -1)
	}

	s.log.Info("membership removed", "membership_id", m.ID, "team_id", m.TeamID, "user_id", m.UserID)
	return nil
}

// UpdateRole changes a membership's role. Demoting the last accepted coach
// is refused like leaving the team.
func (s *MembershipService) UpdateRole(ctx context.Context, id string, role models.Role) (*models.Membership, error) {
	if !role.Valid() {
		return nil, validationError("invalid role %q", role)
	}
	m, err := s.GetMembership(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Role == role {
		return m, nil
	}

	wasCoach := m.CountsAsCoach()
	if wasCoach {
		result, err := s.safety.CheckCoachSafety(ctx, m.UserID, ActionLeaveTeam, m.TeamID)
		if err != nil {
			return nil, err
		}
		if err := result.Violation(); err != nil {
			return nil, err
		}
	}

	m.Role = role
	if err := s.memberships.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	switch isCoach := m.CountsAsCoach(); {
	case wasCoach && !isCoach:
		s.adjustCoachCount(ctx, m.TeamID, -1)
	case !wasCoach && isCoach:
		s.adjustCoachCount(ctx, m.TeamID, 1)
	}
	return m, nil
}

// adjustCoachCount runs after the membership write has succeeded, so a
// failure here is logged rather than returned.
func (s *MembershipService) adjustCoachCount(ctx context.Context, teamID string, delta int) {
	err := s.teams.AdjustCoachCount(ctx, teamID, delta)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.log.Warn("coach count not updated", "team_id", teamID, "delta", delta, "error", err)
	}
}

// ListByUser lists a user's memberships.
func (s *MembershipService) ListByUser(ctx context.Context, userID string, page repository.Page) ([]models.Membership, error) {
	if userID == "" {
		return nil, validationError("user id is required")
	}
	memberships, err := s.memberships.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return memberships, nil
}

// ListByTeam lists a team's memberships joined with member profiles.
func (s *MembershipService) ListByTeam(ctx context.Context, teamID string, page repository.Page) ([]MembershipWithProfile, error) {
	if teamID == "" {
		return nil, validationError("team id is required")
	}
	if _, err := s.teams.FindByID(ctx, teamID); err != nil {
		return nil, lookupError(err, ErrTeamNotFound, "team")
	}

	memberships, err := s.memberships.ListByTeam(ctx, teamID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	out := make([]MembershipWithProfile, len(memberships))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, m := range memberships {
		out[i].Membership = m
		g.Go(func() error {
			profile, err := s.users.FindByID(gctx, m.UserID)
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to load profile: %w", err)
			}
			out[i].Profile = profile
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// purgeByUser builds delete tasks for every membership of a user. Deleting
// an accepted coach row also lowers that team's counter.
func (s *MembershipService) purgeByUser(ctx context.Context, userID string) ([]cascadeTask, error) {
	memberships, err := s.memberships.ListByUser(ctx, userID, repository.Page{})
	if err != nil {
		return nil, err
	}
	tasks := make([]cascadeTask, 0, len(memberships))
	for _, m := range memberships {
		task := s.deleteTask(StageMemberships, m.ID)
		if m.CountsAsCoach() {
			teamID := m.TeamID
			task.after = func(ctx context.Context) error {
				return s.teams.AdjustCoachCount(ctx, teamID, -1)
			}
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// purgeByTeam builds delete tasks for every membership of a team. The team is
// being terminated, so its counter is left alone.
func (s *MembershipService) purgeByTeam(ctx context.Context, teamID string) ([]cascadeTask, error) {
	memberships, err := s.memberships.ListByTeam(ctx, teamID, repository.Page{})
	if err != nil {
		return nil, err
	}
	tasks := make([]cascadeTask, 0, len(memberships))
	for _, m := range memberships {
		tasks = append(tasks, s.deleteTask(StageMemberships, m.ID))
	}
	return tasks, nil
}

func (s *MembershipService) deleteTask(stage, id string) cascadeTask {
	return cascadeTask{
		stage:      stage,
		collection: repository.CollectionMemberships,
		id:         id,
		run: func(ctx context.Context) error {
			return s.memberships.Delete(ctx, id)
		},
	}
}
