package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-management-api/internal/identity"
	"github.com/yukikurage/team-management-api/internal/logger"
	"github.com/yukikurage/team-management-api/internal/models"
	"github.com/yukikurage/team-management-api/internal/repository"
	"github.com/yukikurage/team-management-api/internal/store"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

// faultyStore fails selected calls with store.ErrUnavailable.
type faultyStore struct {
	*store.MemoryStore

	mu         sync.Mutex
	failQuery  map[string]bool
	failDelete map[string]bool
}

func newFaultyStore() *faultyStore {
	return &faultyStore{
		MemoryStore: store.NewMemoryStore(),
		failQuery:   make(map[string]bool),
		failDelete:  make(map[string]bool),
	}
}

// FailQuery makes every query on collection fail.
func (f *faultyStore) FailQuery(collection string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failQuery[collection] = fail
}

// FailDelete makes deletes fail for one document, or for a whole collection when id is "".
func (f *faultyStore) FailDelete(collection, id string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failDelete[collection+"/"+id] = fail
}

func (f *faultyStore) Query(ctx context.Context, collection string, q store.Query) ([]store.Document, error) {
	f.mu.Lock()
	fail := f.failQuery[collection]
	f.mu.Unlock()
	if fail {
		return nil, fmt.Errorf("%w: connection refused", store.ErrUnavailable)
	}
	return f.MemoryStore.Query(ctx, collection, q)
}

func (f *faultyStore) Delete(ctx context.Context, collection, id string) error {
	f.mu.Lock()
	fail := f.failDelete[collection+"/"] || f.failDelete[collection+"/"+id]
	f.mu.Unlock()
	if fail {
		return fmt.Errorf("%w: connection reset", store.ErrUnavailable)
	}
	return f.MemoryStore.Delete(ctx, collection, id)
}

type serviceTestEnv struct {
	ctx        context.Context
	store      *faultyStore
	repos      *repository.Repositories
	identities *identity.StoreProvider
	svc        *Services
	logs       *observer.ObservedLogs
}

func setupServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()

	s := newFaultyStore()
	repos := repository.New(s)
	identities := identity.NewStoreProvider(s).WithCost(bcrypt.MinCost)
	core, logs := observer.New(zapcore.DebugLevel)

	return &serviceTestEnv{
		ctx:        context.Background(),
		store:      s,
		repos:      repos,
		identities: identities,
		svc:        New(repos, identities, logger.NewWithCore(core), Options{MaxOrganizers: 3, Concurrency: 4}),
		logs:       logs,
	}
}

func (e *serviceTestEnv) signup(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := e.svc.Auth.Signup(e.ctx, SignupInput{Email: email, Password: "supersecret"})
	require.NoError(t, err)
	return user
}

func (e *serviceTestEnv) createTeam(t *testing.T, name, creatorID string) *models.Team {
	t.Helper()
	team, err := e.svc.Teams.CreateTeam(e.ctx, CreateTeamInput{Name: name, CreatorID: creatorID})
	require.NoError(t, err)
	return team
}

// join invites userID to the team and accepts the invite.
func (e *serviceTestEnv) join(t *testing.T, userID, teamID string, role models.Role) *models.Membership {
	t.Helper()
	m, err := e.svc.Memberships.AddMembership(e.ctx, AddMembershipInput{UserID: userID, TeamID: teamID, Role: role})
	require.NoError(t, err)
	m, err = e.svc.Memberships.AcceptInvite(e.ctx, m.ID)
	require.NoError(t, err)
	return m
}

func (e *serviceTestEnv) createTournament(t *testing.T, name, creatorID string) *models.Tournament {
	t.Helper()
	tour, err := e.svc.Tournaments.CreateTournament(e.ctx, CreateTournamentInput{Name: name, CreatorID: creatorID})
	require.NoError(t, err)
	return tour
}

// addOrganizer invites the user with email and accepts the invite.
func (e *serviceTestEnv) addOrganizer(t *testing.T, tournamentID, email string) *models.OrganizerRelation {
	t.Helper()
	rel, err := e.svc.Organizers.InviteOrganizer(e.ctx, tournamentID, email)
	require.NoError(t, err)
	rel, err = e.svc.Organizers.AcceptInvite(e.ctx, rel.ID)
	require.NoError(t, err)
	return rel
}

func (e *serviceTestEnv) team(t *testing.T, id string) *models.Team {
	t.Helper()
	team, err := e.repos.Teams.FindByID(e.ctx, id)
	require.NoError(t, err)
	return team
}

func (e *serviceTestEnv) tournament(t *testing.T, id string) *models.Tournament {
	t.Helper()
	tour, err := e.repos.Tournaments.FindByID(e.ctx, id)
	require.NoError(t, err)
	return tour
}

// assertInvariants checks every active team keeps an accepted coach and
// every tournament keeps an active organizer.
func (e *serviceTestEnv) assertInvariants(t *testing.T) {
	t.Helper()

	teams, err := e.store.MemoryStore.Query(e.ctx, repository.CollectionTeams, store.Query{})
	require.NoError(t, err)
	for _, doc := range teams {
		if active, _ := doc["active"].(bool); !active {
			continue
		}
		coaches, err := e.repos.Memberships.ListCoachesByTeam(e.ctx, doc.ID())
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(coaches), 1, "team %s has no coach", doc.ID())
	}

	tournaments, err := e.store.MemoryStore.Query(e.ctx, repository.CollectionTournaments, store.Query{})
	require.NoError(t, err)
	for _, doc := range tournaments {
		organizers, err := e.repos.Organizers.ListActiveByTournament(e.ctx, doc.ID())
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(organizers), 1, "tournament %s has no organizer", doc.ID())
	}
}
