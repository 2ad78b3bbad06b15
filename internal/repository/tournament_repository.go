package repository

import (
	"context"

	"github.com/yukikurage/team-management-api/internal/models"
	"github.com/yukikurage/team-management-api/internal/store"
)

// StoreTournamentRepository is a document store implementation of TournamentRepository
type StoreTournamentRepository struct {
	tournaments collection[models.Tournament]
}

// NewTournamentRepository creates a new TournamentRepository
func NewTournamentRepository(s store.Store) TournamentRepository {
	codec := store.NewCodec[models.Tournament](CollectionTournaments, 1)
	return &StoreTournamentRepository{tournaments: newCollection(s, codec)}
}

func (r *StoreTournamentRepository) Save(ctx context.Context, t *models.Tournament) error {
	return r.tournaments.put(ctx, t.ID, t)
}

func (r *StoreTournamentRepository) FindByID(ctx context.Context, id string) (*models.Tournament, error) {
	return r.tournaments.get(ctx, id)
}

// AdjustOrganizerCount floors the counter at one; a live tournament always
// reports at least its last organizer.
func (r *StoreTournamentRepository) AdjustOrganizerCount(ctx context.Context, id string, delta int) error {
	t, err := r.tournaments.get(ctx, id)
	if err != nil {
		return err
	}
	return r.tournaments.update(ctx, id, store.Document{"organizerCount": max(t.OrganizerCount+delta, 1)})
}

func (r *StoreTournamentRepository) SetTeamIDs(ctx context.Context, id string, teamIDs []string) error {
	if teamIDs == nil {
		teamIDs = []string{}
	}
	return r.tournaments.update(ctx, id, store.Document{"teamIds": teamIDs})
}

func (r *StoreTournamentRepository) Delete(ctx context.Context, id string) error {
	return r.tournaments.delete(ctx, id)
}
