package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codecItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCodec_EncodeStampsVersion(t *testing.T) {
	c := NewCodec[codecItem]("items", 2)

	doc, err := c.Encode(&codecItem{ID: "i1", Name: "ball", Count: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, doc[SchemaField])
	assert.Equal(t, "ball", doc["name"])
	assert.Equal(t, "items", c.Collection())
}

func TestCodec_DecodeCurrentVersion(t *testing.T) {
	c := NewCodec[codecItem]("items", 1)

	item, err := c.Decode(Document{"id": "i1", "name": "ball", "count": float64(3), SchemaField: float64(1)})
	require.NoError(t, err)
	assert.Equal(t, codecItem{ID: "i1", Name: "ball", Count: 3}, *item)
}

func TestCodec_DecodeRunsUpgradeChain(t *testing.T) {
	c := NewCodec[codecItem]("items", 3).
		WithUpgrade(1, func(doc Document) (Document, error) {
			doc["name"] = doc["label"]
			delete(doc, "label")
			return doc, nil
		}).
		WithUpgrade(2, func(doc Document) (Document, error) {
			doc["count"] = float64(len(doc["name"].(string)))
			return doc, nil
		})

	// Missing schema field means version 1.
	item, err := c.Decode(Document{"id": "i1", "label": "ball"})
	require.NoError(t, err)
	assert.Equal(t, "ball", item.Name)
	assert.Equal(t, 4, item.Count)
}

func TestCodec_DecodeRejectsNewerVersion(t *testing.T) {
	c := NewCodec[codecItem]("items", 1)

	_, err := c.Decode(Document{"id": "i1", SchemaField: float64(2)})
	assert.ErrorIs(t, err, ErrSchema)
}

func TestCodec_DecodeMissingUpgrade(t *testing.T) {
	c := NewCodec[codecItem]("items", 2)

	_, err := c.Decode(Document{"id": "i1"})
	assert.ErrorIs(t, err, ErrSchema)
}

func TestCodec_DecodeUpgradeFailure(t *testing.T) {
	c := NewCodec[codecItem]("items", 2).
		WithUpgrade(1, func(Document) (Document, error) {
			return nil, errors.New("bad label")
		})

	_, err := c.Decode(Document{"id": "i1"})
	assert.ErrorIs(t, err, ErrSchema)
	assert.Contains(t, err.Error(), "bad label")
}

func TestCodec_DecodeAll(t *testing.T) {
	c := NewCodec[codecItem]("items", 1)

	items, err := c.DecodeAll([]Document{{"id": "a"}, {"id": "b"}})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[1].ID)
}
