package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/yukikurage/team-management-api/internal/models"
	"github.com/yukikurage/team-management-api/internal/repository"
	"github.com/yukikurage/team-management-api/internal/store"
	"golang.org/x/sync/errgroup"
)

// Action is the removal a safety check is asked about.
type Action string

const (
	ActionLeaveTeam       Action = "LEAVE_TEAM"
	ActionDeleteAccount   Action = "DELETE_ACCOUNT"
	ActionRemoveOrganizer Action = "REMOVE_ORGANIZER"
)

// ParseAction accepts an action name as sent by clients.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionLeaveTeam, ActionDeleteAccount, ActionRemoveOrganizer:
		return a, nil
	}
	return "", validationError("unknown action %q", s)
}

// CoachSafetyResult is the outcome of a coach safety check. When CanProceed
// is false the team fields identify the team that would lose its last coach.
type CoachSafetyResult struct {
	CanProceed bool   `json:"canProceed"`
	Message    string `json:"message"`
	TeamID     string `json:"teamId,omitempty"`
	TeamName   string `json:"teamName,omitempty"`
	CoachCount int    `json:"coachCount"`
}

// Violation converts a failed result into a SafetyViolationError.
func (r *CoachSafetyResult) Violation() error {
	if r.CanProceed {
		return nil
	}
	return &SafetyViolationError{
		Aggregate:       AggregateTeam,
		AggregateID:     r.TeamID,
		AggregateName:   r.TeamName,
		PrivilegedCount: r.CoachCount,
		Message:         r.Message,
	}
}

// OrganizerSafetyResult is the organizer-side mirror of CoachSafetyResult.
type OrganizerSafetyResult struct {
	CanProceed     bool   `json:"canProceed"`
	Message        string `json:"message"`
	TournamentID   string `json:"tournamentId,omitempty"`
	TournamentName string `json:"tournamentName,omitempty"`
	OrganizerCount int    `json:"organizerCount"`
}

// Violation converts a failed result into a SafetyViolationError.
func (r *OrganizerSafetyResult) Violation() error {
	if r.CanProceed {
		return nil
	}
	return &SafetyViolationError{
		Aggregate:       AggregateTournament,
		AggregateID:     r.TournamentID,
		AggregateName:   r.TournamentName,
		PrivilegedCount: r.OrganizerCount,
		Message:         r.Message,
	}
}

// SafetyService decides whether removing a user would leave a team without
// an accepted coach or a tournament without an active organizer.
//
// Checks count live membership rows and take no locks. A removal that runs
// between a check and its delete is not seen, so two concurrent "last coach
// leaves" requests that both observe two coaches can both succeed.
type SafetyService struct {
	memberships repository.MembershipRepository
	organizers  repository.OrganizerRepository
	teams       repository.TeamRepository
	tournaments repository.TournamentRepository
	concurrency int
}

// NewSafetyService creates a new SafetyService. concurrency bounds the
// per-team and per-tournament lookups run in parallel.
func NewSafetyService(repos *repository.Repositories, concurrency int) *SafetyService {
	return &SafetyService{
		memberships: repos.Memberships,
		organizers:  repos.Organizers,
		teams:       repos.Teams,
		tournaments: repos.Tournaments,
		concurrency: max(concurrency, 1),
	}
}

// teamCoaches is the coach count of one team, or skip when the team no
// longer exists.
type teamCoaches struct {
	team  *models.Team
	count int
	skip  bool
}

func (s *SafetyService) countCoaches(ctx context.Context, teamID string) (teamCoaches, error) {
	team, err := s.teams.FindByID(ctx, teamID)
	if errors.Is(err, store.ErrNotFound) {
		return teamCoaches{skip: true}, nil
	}
	if err != nil {
		return teamCoaches{}, fmt.Errorf("failed to find team: %w", err)
	}
	if !team.Active {
		return teamCoaches{skip: true}, nil
	}

	coaches, err := s.memberships.ListCoachesByTeam(ctx, teamID)
	if err != nil {
		return teamCoaches{}, fmt.Errorf("failed to count coaches: %w", err)
	}
	return teamCoaches{team: team, count: len(coaches)}, nil
}

// CheckCoachSafety reports whether userID may take action without leaving a
// team coachless. LEAVE_TEAM checks teamID only; DELETE_ACCOUNT checks every
// team where the user is an accepted coach and ignores teamID.
func (s *SafetyService) CheckCoachSafety(ctx context.Context, userID string, action Action, teamID string) (*CoachSafetyResult, error) {
	if userID == "" {
		return nil, validationError("user id is required")
	}

	switch action {
	case ActionLeaveTeam:
		if teamID == "" {
			return nil, validationError("team id is required for %s", action)
		}
		return s.checkLeaveTeam(ctx, userID, teamID)
	case ActionDeleteAccount:
		return s.checkAllTeams(ctx, userID)
	default:
		return nil, validationError("action %q does not apply to teams", action)
	}
}

func (s *SafetyService) checkLeaveTeam(ctx context.Context, userID, teamID string) (*CoachSafetyResult, error) {
	m, err := s.memberships.FindByUserAndTeam(ctx, userID, teamID)
	if errors.Is(err, store.ErrNotFound) {
		return &CoachSafetyResult{CanProceed: true, Message: "user holds no membership in this team", TeamID: teamID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}
	if !m.CountsAsCoach() {
		return &CoachSafetyResult{CanProceed: true, Message: "user is not an accepted coach of this team", TeamID: teamID}, nil
	}

	tc, err := s.countCoaches(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if tc.skip {
		return &CoachSafetyResult{CanProceed: true, Message: "team no longer exists", TeamID: teamID}, nil
	}
	return coachResult(tc), nil
}

func (s *SafetyService) checkAllTeams(ctx context.Context, userID string) (*CoachSafetyResult, error) {
	held, err := s.memberships.ListCoachesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list coach memberships: %w", err)
	}
	if len(held) == 0 {
		return &CoachSafetyResult{CanProceed: true, Message: "user coaches no teams"}, nil
	}

	teamIDs := make([]string, 0, len(held))
	for _, m := range held {
		teamIDs = append(teamIDs, m.TeamID)
	}
	slices.Sort(teamIDs)
	teamIDs = slices.Compact(teamIDs)

	results := make([]teamCoaches, len(teamIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, id := range teamIDs {
		g.Go(func() error {
			tc, err := s.countCoaches(gctx, id)
			if err != nil {
				return err
			}
			results[i] = tc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, tc := range results {
		if tc.skip {
			continue
		}
		if r := coachResult(tc); !r.CanProceed {
			return r, nil
		}
	}
	return &CoachSafetyResult{CanProceed: true, Message: "every coached team keeps another coach"}, nil
}

func coachResult(tc teamCoaches) *CoachSafetyResult {
	r := &CoachSafetyResult{
		CanProceed: tc.count > 1,
		TeamID:     tc.team.ID,
		TeamName:   tc.team.Name,
		CoachCount: tc.count,
	}
	if r.CanProceed {
		r.Message = fmt.Sprintf("team %q keeps %d other coach(es)", tc.team.Name, tc.count-1)
	} else {
		r.Message = fmt.Sprintf("user is the last coach of team %q; promote another coach first", tc.team.Name)
	}
	return r
}

type tournamentOrganizers struct {
	tournament *models.Tournament
	count      int
	skip       bool
}

func (s *SafetyService) countOrganizers(ctx context.Context, tournamentID string) (tournamentOrganizers, error) {
	t, err := s.tournaments.FindByID(ctx, tournamentID)
	if errors.Is(err, store.ErrNotFound) {
		return tournamentOrganizers{skip: true}, nil
	}
	if err != nil {
		return tournamentOrganizers{}, fmt.Errorf("failed to find tournament: %w", err)
	}

	active, err := s.organizers.ListActiveByTournament(ctx, tournamentID)
	if err != nil {
		return tournamentOrganizers{}, fmt.Errorf("failed to count organizers: %w", err)
	}
	return tournamentOrganizers{tournament: t, count: len(active)}, nil
}

// CheckOrganizerSafety reports whether userID may stop organizing tournamentID.
func (s *SafetyService) CheckOrganizerSafety(ctx context.Context, userID, tournamentID string, action Action) (*OrganizerSafetyResult, error) {
	if userID == "" || tournamentID == "" {
		return nil, validationError("user id and tournament id are required")
	}
	if action != ActionRemoveOrganizer && action != ActionDeleteAccount {
		return nil, validationError("action %q does not apply to tournaments", action)
	}

	rel, err := s.organizers.FindByUserAndTournament(ctx, userID, tournamentID)
	if errors.Is(err, store.ErrNotFound) {
		return &OrganizerSafetyResult{CanProceed: true, Message: "user does not organize this tournament", TournamentID: tournamentID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find organizer relation: %w", err)
	}
	if !rel.Active {
		return &OrganizerSafetyResult{CanProceed: true, Message: "organizer invite is still pending", TournamentID: tournamentID}, nil
	}

	to, err := s.countOrganizers(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if to.skip {
		return &OrganizerSafetyResult{CanProceed: true, Message: "tournament no longer exists", TournamentID: tournamentID}, nil
	}
	return organizerResult(to), nil
}

// CheckUserCanBeRemovedFromAllTournaments fails when the user is the only
// active organizer of any tournament. It gates account deletion.
func (s *SafetyService) CheckUserCanBeRemovedFromAllTournaments(ctx context.Context, userID string) (*OrganizerSafetyResult, error) {
	if userID == "" {
		return nil, validationError("user id is required")
	}

	rels, err := s.organizers.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizer relations: %w", err)
	}
	if len(rels) == 0 {
		return &OrganizerSafetyResult{CanProceed: true, Message: "user organizes no tournaments"}, nil
	}

	ids := make([]string, 0, len(rels))
	for _, rel := range rels {
		ids = append(ids, rel.TournamentID)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	results := make([]tournamentOrganizers, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			to, err := s.countOrganizers(gctx, id)
			if err != nil {
				return err
			}
			results[i] = to
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, to := range results {
		if to.skip {
			continue
		}
		if r := organizerResult(to); !r.CanProceed {
			return r, nil
		}
	}
	return &OrganizerSafetyResult{CanProceed: true, Message: "every organized tournament keeps another organizer"}, nil
}

func organizerResult(to tournamentOrganizers) *OrganizerSafetyResult {
	r := &OrganizerSafetyResult{
		CanProceed:     to.count > 1,
		TournamentID:   to.tournament.ID,
		TournamentName: to.tournament.Name,
		OrganizerCount: to.count,
	}
	if r.CanProceed {
		r.Message = fmt.Sprintf("tournament %q keeps %d other organizer(s)", to.tournament.Name, to.count-1)
	} else {
		r.Message = fmt.Sprintf("user is the only organizer of tournament %q; invite another organizer first", to.tournament.Name)
	}
	return r
}
