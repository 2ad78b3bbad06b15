package services

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"time"

	"github.com/yukikurage/team-management-api/internal/identity"
	"github.com/yukikurage/team-management-api/internal/logger"
	"github.com/yukikurage/team-management-api/internal/repository"
	"github.com/yukikurage/team-management-api/internal/store"
	"golang.org/x/sync/errgroup"
)

// Cascade operations.
const (
	OperationDeleteAccount    = "delete-account"
	OperationTerminateTeam    = "terminate-team"
	OperationDeleteTournament = "delete-tournament"
)

// Cascade stages, in the order each operation runs them.
const (
	StageTournamentSafety   = "tournament-safety"
	StageCoachSafety        = "coach-safety"
	StageMemberships        = "memberships"
	StageOrganizerRelations = "organizer-relations"
	StageIdentity           = "identity"
	StageProfile            = "profile"

	StageDeactivateTeam  = "deactivate-team"
	StageChat            = "chat"
	StageAvailability    = "availability"
	StageTasks           = "tasks"
	StageEvents          = "events"
	StageTournamentLinks = "tournament-links"

	StageTeamLinks  = "team-links"
	StageTournament = "tournament"
)

// cascadeTask removes one dependent record. run returning store.ErrNotFound
// means an earlier attempt already removed it; after then does not run, so
// retrying a stage never applies a counter change twice.
type cascadeTask struct {
	stage      string
	collection string
	id         string
	run        func(ctx context.Context) error
	after      func(ctx context.Context) error
}

// CascadeReport summarizes the dependent records a cascade touched.
type CascadeReport struct {
	Operation   string `json:"operation"`
	Removed     int    `json:"removed"`
	AlreadyGone int    `json:"alreadyGone"`
	Skipped     int    `json:"skipped"`
}

func (r *CascadeReport) add(other *taskTally) {
	r.Removed += int(other.removed.Load())
	r.AlreadyGone += int(other.alreadyGone.Load())
	r.Skipped += int(other.skipped.Load())
}

type taskTally struct {
	removed     atomic.Int64
	alreadyGone atomic.Int64
	skipped     atomic.Int64
}

// CascadeService runs the multi-collection deletions. Safety checks run
// before anything is mutated; after that every dependent record is removed
// independently and a failure on one is logged and skipped.
type CascadeService struct {
	safety      *SafetyService
	memberships *MembershipService
	organizers  *OrganizerService
	teams       repository.TeamRepository
	tournaments repository.TournamentRepository
	users       repository.UserRepository
	dependents  repository.DependentRepository
	identities  identity.Provider
	log         *logger.Logger
	concurrency int
	now         func() time.Time
}

// NewCascadeService creates a new CascadeService.
func NewCascadeService(
	repos *repository.Repositories,
	safety *SafetyService,
	memberships *MembershipService,
	organizers *OrganizerService,
	identities identity.Provider,
	log *logger.Logger,
	concurrency int,
) *CascadeService {
	return &CascadeService{
		safety:      safety,
		memberships: memberships,
		organizers:  organizers,
		teams:       repos.Teams,
		tournaments: repos.Tournaments,
		users:       repos.Users,
		dependents:  repos.Dependents,
		identities:  identities,
		log:         log,
		concurrency: max(concurrency, 1),
		now:         time.Now,
	}
}

// DeleteUserAccount removes a user and everything that only exists because
// of them. It refuses with a SafetyViolationError, before touching anything,
// when the user is the last organizer of a tournament or the last coach of a
// team.
func (s *CascadeService) DeleteUserAccount(ctx context.Context, userID string) (*CascadeReport, error) {
	const op = OperationDeleteAccount
	if userID == "" {
		return nil, validationError("user id is required")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, lookupError(err, ErrUserNotFound, "user")
	}

	organizerCheck, err := s.safety.CheckUserCanBeRemovedFromAllTournaments(ctx, userID)
	if err != nil {
		return nil, stageError(op, StageTournamentSafety, err)
	}
	if err := organizerCheck.Violation(); err != nil {
		s.log.Info("account deletion refused", "user_id", userID, "stage", StageTournamentSafety, "tournament_id", organizerCheck.TournamentID)
		return nil, err
	}

	coachCheck, err := s.safety.CheckCoachSafety(ctx, userID, ActionDeleteAccount, "")
	if err != nil {
		return nil, stageError(op, StageCoachSafety, err)
	}
	if err := coachCheck.Violation(); err != nil {
		s.log.Info("account deletion refused", "user_id", userID, "stage", StageCoachSafety, "team_id", coachCheck.TeamID)
		return nil, err
	}

	report := &CascadeReport{Operation: op}

	tasks, err := s.memberships.purgeByUser(ctx, userID)
	if err != nil {
		return report, stageError(op, StageMemberships, err)
	}
	s.runTasks(ctx, op, tasks, report)

	tasks, err = s.organizers.purgeByUser(ctx, userID)
	if err != nil {
		return report, stageError(op, StageOrganizerRelations, err)
	}
	s.runTasks(ctx, op, tasks, report)

	if err := s.identities.DeleteIdentity(ctx, userID); err != nil && !errors.Is(err, identity.ErrNotFound) {
		return report, stageError(op, StageIdentity, err)
	}

	if err := s.users.Delete(ctx, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return report, stageError(op, StageProfile, err)
	}

	s.log.Info("account deleted", "user_id", userID, "removed", report.Removed, "skipped", report.Skipped)
	return report, nil
}

// TerminateTeam deactivates a team and removes its chat, availability,
// tasks, events and memberships. Running it again on a terminated team
// finishes whatever an earlier run left behind.
func (s *CascadeService) TerminateTeam(ctx context.Context, teamID string) (*CascadeReport, error) {
	const op = OperationTerminateTeam
	if teamID == "" {
		return nil, validationError("team id is required")
	}
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, lookupError(err, ErrTeamNotFound, "team")
	}

	if team.Active {
		if err := s.teams.Deactivate(ctx, teamID, s.now()); err != nil {
			return nil, stageError(op, StageDeactivateTeam, err)
		}
	}

	report := &CascadeReport{Operation: op}
	stages := []struct {
		stage      string
		collection string
		field      string
	}{
		{StageChat, repository.CollectionChatMessages, "teamId"},
		{StageChat, repository.CollectionChatRooms, "teamId"},
		{StageAvailability, repository.CollectionAvailabilities, "teamId"},
		{StageTasks, repository.CollectionTasks, "teamId"},
		{StageEvents, repository.CollectionEvents, "teamId"},
	}
	for _, st := range stages {
		ids, err := s.dependents.ListIDs(ctx, st.collection, st.field, teamID)
		if err != nil {
			return report, stageError(op, st.stage, err)
		}
		tasks := make([]cascadeTask, 0, len(ids))
		for _, id := range ids {
			tasks = append(tasks, s.dependentTask(st.stage, st.collection, id))
		}
		s.runTasks(ctx, op, tasks, report)
	}

	tasks, err := s.memberships.purgeByTeam(ctx, teamID)
	if err != nil {
		return report, stageError(op, StageMemberships, err)
	}
	s.runTasks(ctx, op, tasks, report)

	tasks = make([]cascadeTask, 0, len(team.TournamentIDs))
	for _, tournamentID := range team.TournamentIDs {
		tasks = append(tasks, s.unlinkTeamTask(tournamentID, teamID))
	}
	s.runTasks(ctx, op, tasks, report)

	s.log.Info("team terminated", "team_id", teamID, "removed", report.Removed, "skipped", report.Skipped)
	return report, nil
}

// DeleteTournament removes every organizer relation, unlinks registered
// teams and then deletes the tournament itself.
func (s *CascadeService) DeleteTournament(ctx context.Context, tournamentID string) (*CascadeReport, error) {
	const op = OperationDeleteTournament
	if tournamentID == "" {
		return nil, validationError("tournament id is required")
	}
	t, err := s.tournaments.FindByID(ctx, tournamentID)
	if err != nil {
		return nil, lookupError(err, ErrTournamentNotFound, "tournament")
	}

	report := &CascadeReport{Operation: op}

	tasks, err := s.organizers.purgeByTournament(ctx, tournamentID)
	if err != nil {
		return report, stageError(op, StageOrganizerRelations, err)
	}
	s.runTasks(ctx, op, tasks, report)

	tasks = make([]cascadeTask, 0, len(t.TeamIDs))
	for _, teamID := range t.TeamIDs {
		tasks = append(tasks, s.unlinkTournamentTask(teamID, tournamentID))
	}
	s.runTasks(ctx, op, tasks, report)

	if err := s.tournaments.Delete(ctx, tournamentID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return report, stageError(op, StageTournament, err)
	}

	s.log.Info("tournament deleted", "tournament_id", tournamentID, "removed", report.Removed, "skipped", report.Skipped)
	return report, nil
}

func (s *CascadeService) dependentTask(stage, collection, id string) cascadeTask {
	return cascadeTask{
		stage:      stage,
		collection: collection,
		id:         id,
		run: func(ctx context.Context) error {
			return s.dependents.Delete(ctx, collection, id)
		},
	}
}

// unlinkTournamentTask drops tournamentID from a team's tournament list.
func (s *CascadeService) unlinkTournamentTask(teamID, tournamentID string) cascadeTask {
	return cascadeTask{
		stage:      StageTeamLinks,
		collection: repository.CollectionTeams,
		id:         teamID,
		run: func(ctx context.Context) error {
			team, err := s.teams.FindByID(ctx, teamID)
			if err != nil {
				return err
			}
			if !slices.Contains(team.TournamentIDs, tournamentID) {
				return store.ErrNotFound
			}
			return s.teams.SetTournamentIDs(ctx, teamID, without(team.TournamentIDs, tournamentID))
		},
	}
}

// unlinkTeamTask drops teamID from a tournament's registered teams.
func (s *CascadeService) unlinkTeamTask(tournamentID, teamID string) cascadeTask {
	return cascadeTask{
		stage:      StageTournamentLinks,
		collection: repository.CollectionTournaments,
		id:         tournamentID,
		run: func(ctx context.Context) error {
			t, err := s.tournaments.FindByID(ctx, tournamentID)
			if err != nil {
				return err
			}
			if !slices.Contains(t.TeamIDs, teamID) {
				return store.ErrNotFound
			}
			return s.tournaments.SetTeamIDs(ctx, tournamentID, without(t.TeamIDs, teamID))
		},
	}
}

// runTasks runs tasks with bounded parallelism. It never fails: a task that
// errors is reported as a partial cascade warning and skipped.
func (s *CascadeService) runTasks(ctx context.Context, operation string, tasks []cascadeTask, report *CascadeReport) {
	if len(tasks) == 0 {
		return
	}

	var tally taskTally
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, task := range tasks {
		g.Go(func() error {
			err := task.run(ctx)
			switch {
			case errors.Is(err, store.ErrNotFound):
				tally.alreadyGone.Add(1)
				return nil
			case err != nil:
				tally.skipped.Add(1)
				s.warnPartial(operation, task, err)
				return nil
			}
			tally.removed.Add(1)

			if task.after != nil {
				if err := task.after(ctx); err != nil && !errors.Is(err, store.ErrNotFound) {
					s.warnPartial(operation, task, err)
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	report.add(&tally)
}

func (s *CascadeService) warnPartial(operation string, task cascadeTask, err error) {
	s.log.Warn("PartialCascadeWarning",
		"operation", operation,
		"stage", task.stage,
		"collection", task.collection,
		"doc_id", task.id,
		"error", err,
	)
}

func stageError(operation, stage string, err error) error {
	return &CascadeStageError{Operation: operation, Stage: stage, Err: err}
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
