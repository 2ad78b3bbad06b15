package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore keeps documents as encoded JSON in process memory. Values are
// copied on every read and write so callers never share maps with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string][]byte)}
}

// Get returns a copy of the stored document.
func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}

	s.mu.RLock()
	raw, ok := s.collections[collection][id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decodeDocument(raw)
}

// Query scans the collection and applies q.
func (s *MemoryStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}

	s.mu.RLock()
	docs := make([]Document, 0, len(s.collections[collection]))
	for _, raw := range s.collections[collection] {
		doc, err := decodeDocument(raw)
		if err != nil {
			s.mu.RUnlock()
			return nil, err
		}
		docs = append(docs, doc)
	}
	s.mu.RUnlock()

	return q.apply(docs), nil
}

// Set creates or replaces a document.
func (s *MemoryStore) Set(ctx context.Context, collection, id string, doc Document) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}

	raw, err := encodeDocument(id, doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string][]byte)
	}
	s.collections[collection][id] = raw
	return nil
}

// Update merges partial into the stored document.
func (s *MemoryStore) Update(ctx context.Context, collection, id string, partial Document) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		return err
	}
	for k, v := range partial {
		doc[k] = v
	}
	merged, err := encodeDocument(id, doc)
	if err != nil {
		return err
	}
	s.collections[collection][id] = merged
	return nil
}

// Delete removes a document.
func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

// Count returns the number of documents in a collection.
func (s *MemoryStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

func encodeDocument(id string, doc Document) ([]byte, error) {
	body := make(Document, len(doc)+1)
	for k, v := range doc {
		body[k] = v
	}
	body[IDField] = id

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return raw, nil
}

func decodeDocument(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return doc, nil
}
