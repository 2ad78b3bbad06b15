package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	GinMode  string `env:"GIN_MODE" envDefault:"debug"`
	LogMode  string `env:"LOG_MODE" envDefault:"development"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"sqlite"`
	StoreDSN    string `env:"STORE_DSN" envDefault:"team_management.db"`

	SessionStore  string `env:"SESSION_STORE" envDefault:"cookie"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	SessionSecret string `env:"SESSION_SECRET" envDefault:"default-secret-key-change-me"`

	CORSOrigins   []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	AuthRateLimit float64  `env:"AUTH_RATE_LIMIT" envDefault:"1"`
	AuthRateBurst int      `env:"AUTH_RATE_BURST" envDefault:"5"`

	MaxTournamentOrganizers int `env:"MAX_TOURNAMENT_ORGANIZERS" envDefault:"5"`
	CascadeConcurrency      int `env:"CASCADE_CONCURRENCY" envDefault:"8"`
}

// Load reads configuration from the environment, loading a .env file first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.StoreDriver != DriverMemory && c.StoreDSN == "" {
		return fmt.Errorf("STORE_DSN is required for driver %q", c.StoreDriver)
	}
	switch c.SessionStore {
	case "cookie", "redis":
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.SessionStore)
	}
	if c.MaxTournamentOrganizers < 1 {
		return fmt.Errorf("MAX_TOURNAMENT_ORGANIZERS must be positive, got %d", c.MaxTournamentOrganizers)
	}
	if c.AuthRateLimit <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT must be positive, got %v", c.AuthRateLimit)
	}
	if c.CascadeConcurrency < 1 {
		c.CascadeConcurrency = 1
	}
	return nil
}
