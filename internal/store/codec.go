package store

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SchemaField holds the schema version of an encoded document.
const SchemaField = "_schema"

// ErrSchema is returned for documents written by a newer schema, or an older
// one with no registered upgrade.
var ErrSchema = errors.New("unsupported document schema")

// UpgradeFunc rewrites a document from one schema version to the next.
type UpgradeFunc func(doc Document) (Document, error)

// Codec converts between typed values and stored documents for one
// collection. Documents without a schema field are treated as version 1.
type Codec[T any] struct {
	collection string
	version    int
	upgrades   map[int]UpgradeFunc
}

// NewCodec creates a codec that writes documents at version.
func NewCodec[T any](collection string, version int) *Codec[T] {
	if version < 1 {
		version = 1
	}
	return &Codec[T]{
		collection: collection,
		version:    version,
		upgrades:   make(map[int]UpgradeFunc),
	}
}

// WithUpgrade registers the step from version from to from+1.
func (c *Codec[T]) WithUpgrade(from int, fn UpgradeFunc) *Codec[T] {
	c.upgrades[from] = fn
	return c
}

// Collection returns the collection the codec belongs to.
func (c *Codec[T]) Collection() string {
	return c.collection
}

// Version returns the schema version written by Encode.
func (c *Codec[T]) Version() int {
	return c.version
}

// Encode converts v to a document stamped with the current schema version.
func (c *Codec[T]) Encode(v *T) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, c.collection, err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, c.collection, err)
	}
	doc[SchemaField] = c.version
	return doc, nil
}

// Decode upgrades doc to the current version and converts it to T.
func (c *Codec[T]) Decode(doc Document) (*T, error) {
	version := schemaVersion(doc)
	if version > c.version {
		return nil, fmt.Errorf("%w: %s version %d is newer than %d", ErrSchema, c.collection, version, c.version)
	}

	for ; version < c.version; version++ {
		upgrade, ok := c.upgrades[version]
		if !ok {
			return nil, fmt.Errorf("%w: %s has no upgrade from version %d", ErrSchema, c.collection, version)
		}
		next, err := upgrade(doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %s upgrade from version %d: %v", ErrSchema, c.collection, version, err)
		}
		doc = next
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, c.collection, err)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, c.collection, err)
	}
	return &v, nil
}

// DecodeAll decodes every document in docs.
func (c *Codec[T]) DecodeAll(docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := c.Decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func schemaVersion(doc Document) int {
	switch v := doc[SchemaField].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 1
	}
}
