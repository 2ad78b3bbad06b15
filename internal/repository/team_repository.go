package repository

import (
	"context"
	"time"

	"github.com/yukikurage/team-management-api/internal/models"
	"github.com/yukikurage/team-management-api/internal/store"
)

// StoreTeamRepository is a document store implementation of TeamRepository
type StoreTeamRepository struct {
	teams collection[models.Team]
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(s store.Store) TeamRepository {
	codec := store.NewCodec[models.Team](CollectionTeams, 1)
	return &StoreTeamRepository{teams: newCollection(s, codec)}
}

func (r *StoreTeamRepository) Save(ctx context.Context, team *models.Team) error {
	return r.teams.put(ctx, team.ID, team)
}

func (r *StoreTeamRepository) FindByID(ctx context.Context, id string) (*models.Team, error) {
	return r.teams.get(ctx, id)
}

// AdjustCoachCount reads then writes the counter. Concurrent adjustments may
// lose an update; the counter is informational and never gates removals.
func (r *StoreTeamRepository) AdjustCoachCount(ctx context.Context, id string, delta int) error {
	team, err := r.teams.get(ctx, id)
	if err != nil {
		return err
	}
	return r.teams.update(ctx, id, store.Document{"coachCount": max(team.CoachCount+delta, 0)})
}

func (r *StoreTeamRepository) Deactivate(ctx context.Context, id string, at time.Time) error {
	return r.teams.update(ctx, id, store.Document{
		"active":       false,
		"terminatedAt": at.UTC().Format(time.RFC3339Nano),
	})
}

func (r *StoreTeamRepository) SetTournamentIDs(ctx context.Context, id string, tournamentIDs []string) error {
	if tournamentIDs == nil {
		tournamentIDs = []string{}
	}
	return r.teams.update(ctx, id, store.Document{"tournamentIds": tournamentIDs})
}

func (r *StoreTeamRepository) Delete(ctx context.Context, id string) error {
	return r.teams.delete(ctx, id)
}
