// Package store is the document-store boundary: a small collection/id keyed
// interface with an in-memory implementation for tests and local runs, and a
// GORM-backed implementation for sqlite, mysql and postgres.
//
// Every call is an independent round-trip. Nothing here spans documents
// transactionally; callers that touch several documents must tolerate partial
// progress.
package store

import (
	"context"
	"errors"
	"fmt"
)

// IDField is the document key every stored document carries.
const IDField = "id"

var (
	// ErrNotFound is returned when a collection/id pair has no document.
	ErrNotFound = errors.New("document not found")
	// ErrUnavailable wraps transport and driver failures. Callers may retry the operation.
	ErrUnavailable = errors.New("document store unavailable")
	// ErrInvalidDocument is returned for documents that cannot be encoded or decoded.
	ErrInvalidDocument = errors.New("invalid document")
)

// Document is the decoded JSON body of a stored record.
type Document map[string]any

// ID returns the document key, or "" when absent.
func (d Document) ID() string {
	id, _ := d[IDField].(string)
	return id
}

// Store is the document store consumed by the repositories.
type Store interface {
	// Get returns the document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Query returns documents matching every predicate, ordered and paged.
	Query(ctx context.Context, collection string, q Query) ([]Document, error)

	// Set creates or replaces the document.
	Set(ctx context.Context, collection, id string, doc Document) error

	// Update merges partial into an existing document, or returns ErrNotFound.
	Update(ctx context.Context, collection, id string, partial Document) error

	// Delete removes the document, or returns ErrNotFound.
	Delete(ctx context.Context, collection, id string) error
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
