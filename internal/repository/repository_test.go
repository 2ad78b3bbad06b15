package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-management-api/internal/models"
	"github.com/yukikurage/team-management-api/internal/store"
)

func TestMembershipRepository_DecodesVersionOneJoinedAt(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	joined := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	// Written before joinedAt became a timestamp string.
	require.NoError(t, s.Set(ctx, CollectionMemberships, "m1", store.Document{
		"userId":         "u1",
		"teamId":         "t1",
		"role":           "COACH",
		"joinedAt":       joined.UnixMilli(),
		"active":         true,
		"inviteAccepted": true,
	}))

	repo := NewMembershipRepository(s)
	m, err := repo.FindByID(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, joined.Equal(m.JoinedAt))
	assert.Equal(t, models.RoleCoach, m.Role)

	require.NoError(t, repo.Save(ctx, m))
	doc, err := s.Get(ctx, CollectionMemberships, "m1")
	require.NoError(t, err)
	assert.Equal(t, float64(MembershipSchemaVersion), doc[store.SchemaField])
	assert.IsType(t, "", doc["joinedAt"])
}

func TestMembershipRepository_CoachQueries(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	repo := NewMembershipRepository(s)

	rows := []models.Membership{
		{ID: "m1", UserID: "a", TeamID: "t1", Role: models.RoleCoach, Active: true, InviteAccepted: true},
		{ID: "m2", UserID: "b", TeamID: "t1", Role: models.RoleCoach},
		{ID: "m3", UserID: "c", TeamID: "t1", Role: models.RolePlayer, Active: true, InviteAccepted: true},
		{ID: "m4", UserID: "a", TeamID: "t2", Role: models.RoleCoach, Active: true, InviteAccepted: true},
	}
	for i := range rows {
		require.NoError(t, repo.Save(ctx, &rows[i]))
	}

	coaches, err := repo.ListCoachesByTeam(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, coaches, 1)
	assert.Equal(t, "m1", coaches[0].ID)

	held, err := repo.ListCoachesByUser(ctx, "a")
	require.NoError(t, err)
	require.Len(t, held, 2)
	assert.Equal(t, "t1", held[0].TeamID)
	assert.Equal(t, "t2", held[1].TeamID)

	m, err := repo.FindByUserAndTeam(ctx, "b", "t1")
	require.NoError(t, err)
	assert.Equal(t, "m2", m.ID)

	_, err = repo.FindByUserAndTeam(ctx, "b", "t2")
	assert.ErrorIs(t, err, store.ErrNotFound)

	page, err := repo.ListByTeam(ctx, "t1", Page{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestTeamRepository_CoachCountFloorsAtZero(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	repo := NewTeamRepository(s)
	require.NoError(t, repo.Save(ctx, &models.Team{ID: "t1", Name: "Falcons", Active: true, CoachCount: 1}))

	require.NoError(t, repo.AdjustCoachCount(ctx, "t1", -1))
	require.NoError(t, repo.AdjustCoachCount(ctx, "t1", -1))

	team, err := repo.FindByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 0, team.CoachCount)
	assert.Equal(t, "Falcons", team.Name)

	assert.ErrorIs(t, repo.AdjustCoachCount(ctx, "missing", 1), store.ErrNotFound)
}

func TestTeamRepository_Deactivate(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	repo := NewTeamRepository(s)
	require.NoError(t, repo.Save(ctx, &models.Team{ID: "t1", Active: true}))

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, repo.Deactivate(ctx, "t1", at))

	team, err := repo.FindByID(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, team.Active)
	require.NotNil(t, team.TerminatedAt)
	assert.True(t, at.Equal(*team.TerminatedAt))
}

func TestTournamentRepository_OrganizerCountFloorsAtOne(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	repo := NewTournamentRepository(s)
	require.NoError(t, repo.Save(ctx, &models.Tournament{ID: "x", OrganizerCount: 2, MaxOrganizers: 5}))

	require.NoError(t, repo.AdjustOrganizerCount(ctx, "x", -1))
	require.NoError(t, repo.AdjustOrganizerCount(ctx, "x", -1))

	tour, err := repo.FindByID(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, 1, tour.OrganizerCount)
}

func TestOrganizerRepository_ActiveAndPending(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	repo := NewOrganizerRepository(s)

	require.NoError(t, repo.Save(ctx, &models.OrganizerRelation{ID: "r1", UserID: "u1", TournamentID: "x", Active: true}))
	require.NoError(t, repo.Save(ctx, &models.OrganizerRelation{ID: "r2", UserID: "u1", TournamentID: "y"}))
	require.NoError(t, repo.Save(ctx, &models.OrganizerRelation{ID: "r3", UserID: "u2", TournamentID: "x"}))

	active, err := repo.ListActiveByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "x", active[0].TournamentID)

	pending, err := repo.ListPendingByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "y", pending[0].TournamentID)

	all, err := repo.ListByTournament(ctx, "x")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	organizers, err := repo.ListActiveByTournament(ctx, "x")
	require.NoError(t, err)
	assert.Len(t, organizers, 1)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	repo := NewUserRepository(s)
	require.NoError(t, repo.Save(ctx, &models.User{ID: "u1", Email: "coach@example.com"}))

	user, err := repo.FindByEmail(ctx, " Coach@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDependentRepository_ListIDsAndDelete(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	repo := NewDependentRepository(s)

	require.NoError(t, repo.SaveTask(ctx, &models.Task{ID: "k1", TeamID: "t1"}))
	require.NoError(t, repo.SaveTask(ctx, &models.Task{ID: "k2", TeamID: "t1"}))
	require.NoError(t, repo.SaveTask(ctx, &models.Task{ID: "k3", TeamID: "t2"}))

	ids, err := repo.ListIDs(ctx, CollectionTasks, "teamId", "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"k1", "k2"}, ids)

	require.NoError(t, repo.Delete(ctx, CollectionTasks, "k1"))
	assert.ErrorIs(t, repo.Delete(ctx, CollectionTasks, "k1"), store.ErrNotFound)
	assert.Equal(t, 2, s.Count(CollectionTasks))
}
