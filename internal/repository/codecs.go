package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yukikurage/team-management-api/internal/models"
	"github.com/yukikurage/team-management-api/internal/store"
)

// MembershipSchemaVersion is the membership layout written today. Version 1
// stored joinedAt as epoch milliseconds.
const MembershipSchemaVersion = 2

func newMembershipCodec() *store.Codec[models.Membership] {
	return store.NewCodec[models.Membership](CollectionMemberships, MembershipSchemaVersion).
		WithUpgrade(1, upgradeMembershipJoinedAt)
}

func upgradeMembershipJoinedAt(doc store.Document) (store.Document, error) {
	switch v := doc["joinedAt"].(type) {
	case nil, string:
	case float64:
		doc["joinedAt"] = time.UnixMilli(int64(v)).UTC().Format(time.RFC3339Nano)
	default:
		return nil, fmt.Errorf("joinedAt has type %T", v)
	}
	return doc, nil
}

// collection is the typed access every repository builds on.
type collection[T any] struct {
	store store.Store
	codec *store.Codec[T]
}

func newCollection[T any](s store.Store, codec *store.Codec[T]) collection[T] {
	return collection[T]{store: s, codec: codec}
}

func (c collection[T]) get(ctx context.Context, id string) (*T, error) {
	doc, err := c.store.Get(ctx, c.codec.Collection(), id)
	if err != nil {
		return nil, err
	}
	return c.codec.Decode(doc)
}

func (c collection[T]) put(ctx context.Context, id string, v *T) error {
	doc, err := c.codec.Encode(v)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.codec.Collection(), id, doc)
}

func (c collection[T]) find(ctx context.Context, q store.Query) ([]T, error) {
	docs, err := c.store.Query(ctx, c.codec.Collection(), q)
	if err != nil {
		return nil, err
	}
	return c.codec.DecodeAll(docs)
}

func (c collection[T]) first(ctx context.Context, where ...store.Predicate) (*T, error) {
	items, err := c.find(ctx, store.Query{Where: where, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, store.ErrNotFound
	}
	return &items[0], nil
}

func (c collection[T]) update(ctx context.Context, id string, partial store.Document) error {
	return c.store.Update(ctx, c.codec.Collection(), id, partial)
}

func (c collection[T]) delete(ctx context.Context, id string) error {
	return c.store.Delete(ctx, c.codec.Collection(), id)
}
