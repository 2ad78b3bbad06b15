package database

import (
	"fmt"

	"github.com/yukikurage/team-management-api/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens a GORM connection for the configured SQL driver.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.StoreDSN)
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.StoreDSN)
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.StoreDSN)
	default:
		return nil, fmt.Errorf("driver %q has no SQL connection", cfg.StoreDriver)
	}

	logLevel := logger.Warn
	if cfg.GinMode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
