package repository

import (
	"context"

	"github.com/yukikurage/team-management-api/internal/models"
	"github.com/yukikurage/team-management-api/internal/store"
)

// StoreOrganizerRepository is a document store implementation of OrganizerRepository
type StoreOrganizerRepository struct {
	relations collection[models.OrganizerRelation]
}

// NewOrganizerRepository creates a new OrganizerRepository
func NewOrganizerRepository(s store.Store) OrganizerRepository {
	codec := store.NewCodec[models.OrganizerRelation](CollectionOrganizers, 1)
	return &StoreOrganizerRepository{relations: newCollection(s, codec)}
}

func (r *StoreOrganizerRepository) Save(ctx context.Context, rel *models.OrganizerRelation) error {
	return r.relations.put(ctx, rel.ID, rel)
}

func (r *StoreOrganizerRepository) FindByID(ctx context.Context, id string) (*models.OrganizerRelation, error) {
	return r.relations.get(ctx, id)
}

func (r *StoreOrganizerRepository) FindByUserAndTournament(ctx context.Context, userID, tournamentID string) (*models.OrganizerRelation, error) {
	return r.relations.first(ctx, store.Eq("userId", userID), store.Eq("tournamentId", tournamentID))
}

func (r *StoreOrganizerRepository) ListByTournament(ctx context.Context, tournamentID string) ([]models.OrganizerRelation, error) {
	return r.byTournament(ctx, tournamentID)
}

func (r *StoreOrganizerRepository) ListActiveByTournament(ctx context.Context, tournamentID string) ([]models.OrganizerRelation, error) {
	return r.byTournament(ctx, tournamentID, store.Eq("active", true))
}

func (r *StoreOrganizerRepository) ListByUser(ctx context.Context, userID string) ([]models.OrganizerRelation, error) {
	return r.byUser(ctx, userID)
}

func (r *StoreOrganizerRepository) ListActiveByUser(ctx context.Context, userID string) ([]models.OrganizerRelation, error) {
	return r.byUser(ctx, userID, store.Eq("active", true))
}

func (r *StoreOrganizerRepository) ListPendingByUser(ctx context.Context, userID string) ([]models.OrganizerRelation, error) {
	return r.byUser(ctx, userID, store.Eq("active", false))
}

func (r *StoreOrganizerRepository) Delete(ctx context.Context, id string) error {
	return r.relations.delete(ctx, id)
}

func (r *StoreOrganizerRepository) byTournament(ctx context.Context, tournamentID string, extra ...store.Predicate) ([]models.OrganizerRelation, error) {
	return r.relations.find(ctx, store.Query{
		Where:   append([]store.Predicate{store.Eq("tournamentId", tournamentID)}, extra...),
		OrderBy: "createdAt",
	})
}

func (r *StoreOrganizerRepository) byUser(ctx context.Context, userID string, extra ...store.Predicate) ([]models.OrganizerRelation, error) {
	return r.relations.find(ctx, store.Query{
		Where:   append([]store.Predicate{store.Eq("userId", userID)}, extra...),
		OrderBy: "tournamentId",
	})
}
