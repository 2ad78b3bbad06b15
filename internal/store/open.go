package store

import (
	"fmt"

	"github.com/yukikurage/team-management-api/internal/config"
	"github.com/yukikurage/team-management-api/internal/database"
)

// Open returns the Store selected by cfg.StoreDriver. SQL backends are
// connected and migrated before they are returned.
func Open(cfg *config.Config) (Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		return NewMemoryStore(), nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	s := NewGormStore(db)
	if err := s.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}
