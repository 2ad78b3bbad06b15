package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-management-api/internal/config"
)

func TestMemoryStore_CanceledContextIsUnavailable(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Get(ctx, "teams", "t1")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, s.Set(ctx, "teams", "t1", Document{}), ErrUnavailable)
	assert.Equal(t, 0, s.Count("teams"))
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	doc := Document{"name": "Falcons"}
	require.NoError(t, s.Set(ctx, "teams", "t1", doc))

	doc["name"] = "changed"
	got, err := s.Get(ctx, "teams", "t1")
	require.NoError(t, err)
	got["name"] = "changed again"

	again, err := s.Get(ctx, "teams", "t1")
	require.NoError(t, err)
	assert.Equal(t, "Falcons", again["name"])
}

func TestMemoryStore_RejectsUnencodableDocument(t *testing.T) {
	s := NewMemoryStore()
	err := s.Set(context.Background(), "teams", "t1", Document{"bad": make(chan int)})
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestOpen_MemoryDriver(t *testing.T) {
	s, err := Open(&config.Config{StoreDriver: config.DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
}

func TestOpen_SQLiteDriver(t *testing.T) {
	s, err := Open(&config.Config{StoreDriver: config.DriverSQLite, StoreDSN: ":memory:", GinMode: "test"})
	require.NoError(t, err)
	require.IsType(t, &GormStore{}, s)

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "teams", "t1", Document{"name": "Falcons"}))
	doc, err := s.Get(ctx, "teams", "t1")
	require.NoError(t, err)
	assert.Equal(t, "Falcons", doc["name"])
}
