package repository

import (
	"context"

	"github.com/yukikurage/team-management-api/internal/models"
	"github.com/yukikurage/team-management-api/internal/store"
)

// StoreDependentRepository is a document store implementation of DependentRepository
type StoreDependentRepository struct {
	store        store.Store
	rooms        collection[models.ChatRoom]
	messages     collection[models.ChatMessage]
	availability collection[models.Availability]
	tasks        collection[models.Task]
	events       collection[models.Event]
}

// NewDependentRepository creates a new DependentRepository
func NewDependentRepository(s store.Store) DependentRepository {
	return &StoreDependentRepository{
		store:        s,
		rooms:        newCollection(s, store.NewCodec[models.ChatRoom](CollectionChatRooms, 1)),
		messages:     newCollection(s, store.NewCodec[models.ChatMessage](CollectionChatMessages, 1)),
		availability: newCollection(s, store.NewCodec[models.Availability](CollectionAvailabilities, 1)),
		tasks:        newCollection(s, store.NewCodec[models.Task](CollectionTasks, 1)),
		events:       newCollection(s, store.NewCodec[models.Event](CollectionEvents, 1)),
	}
}

func (r *StoreDependentRepository) SaveChatRoom(ctx context.Context, room *models.ChatRoom) error {
	return r.rooms.put(ctx, room.ID, room)
}

func (r *StoreDependentRepository) SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	return r.messages.put(ctx, msg.ID, msg)
}

func (r *StoreDependentRepository) SaveAvailability(ctx context.Context, a *models.Availability) error {
	return r.availability.put(ctx, a.ID, a)
}

func (r *StoreDependentRepository) SaveTask(ctx context.Context, task *models.Task) error {
	return r.tasks.put(ctx, task.ID, task)
}

func (r *StoreDependentRepository) SaveEvent(ctx context.Context, event *models.Event) error {
	return r.events.put(ctx, event.ID, event)
}

// ListIDs reads ids without decoding bodies, so records written by any
// schema version can still be found and removed.
func (r *StoreDependentRepository) ListIDs(ctx context.Context, collection, field, value string) ([]string, error) {
	docs, err := r.store.Query(ctx, collection, store.Query{Where: []store.Predicate{store.Eq(field, value)}})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID())
	}
	return ids, nil
}

func (r *StoreDependentRepository) Delete(ctx context.Context, collection, id string) error {
	return r.store.Delete(ctx, collection, id)
}
