package repository

import (
	"context"

	"github.com/yukikurage/team-management-api/internal/models"
	"github.com/yukikurage/team-management-api/internal/store"
)

// StoreMembershipRepository is a document store implementation of MembershipRepository
type StoreMembershipRepository struct {
	memberships collection[models.Membership]
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(s store.Store) MembershipRepository {
	return &StoreMembershipRepository{memberships: newCollection(s, newMembershipCodec())}
}

func (r *StoreMembershipRepository) Save(ctx context.Context, m *models.Membership) error {
	return r.memberships.put(ctx, m.ID, m)
}

func (r *StoreMembershipRepository) FindByID(ctx context.Context, id string) (*models.Membership, error) {
	return r.memberships.get(ctx, id)
}

func (r *StoreMembershipRepository) FindByUserAndTeam(ctx context.Context, userID, teamID string) (*models.Membership, error) {
	return r.memberships.first(ctx, store.Eq("userId", userID), store.Eq("teamId", teamID))
}

func (r *StoreMembershipRepository) ListByUser(ctx context.Context, userID string, page Page) ([]models.Membership, error) {
	return r.memberships.find(ctx, store.Query{
		Where:   []store.Predicate{store.Eq("userId", userID)},
		OrderBy: "teamId",
		Limit:   page.Limit,
		Offset:  page.Offset,
	})
}

func (r *StoreMembershipRepository) ListByTeam(ctx context.Context, teamID string, page Page) ([]models.Membership, error) {
	return r.memberships.find(ctx, store.Query{
		Where:   []store.Predicate{store.Eq("teamId", teamID)},
		OrderBy: "joinedAt",
		Limit:   page.Limit,
		Offset:  page.Offset,
	})
}

func (r *StoreMembershipRepository) ListCoachesByTeam(ctx context.Context, teamID string) ([]models.Membership, error) {
	return r.memberships.find(ctx, store.Query{
		Where: append(coachPredicates(), store.Eq("teamId", teamID)),
	})
}

func (r *StoreMembershipRepository) ListCoachesByUser(ctx context.Context, userID string) ([]models.Membership, error) {
	return r.memberships.find(ctx, store.Query{
		Where:   append(coachPredicates(), store.Eq("userId", userID)),
		OrderBy: "teamId",
	})
}

func (r *StoreMembershipRepository) Delete(ctx context.Context, id string) error {
	return r.memberships.delete(ctx, id)
}

func coachPredicates() []store.Predicate {
	return []store.Predicate{
		store.Eq("role", string(models.RoleCoach)),
		store.Eq("active", true),
		store.Eq("inviteAccepted", true),
	}
}
