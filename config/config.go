// Package config loads notifydesk settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/oncallkit/notifydesk/pkg/db"
	"github.com/oncallkit/notifydesk/pkg/logger"
	"github.com/oncallkit/notifydesk/pkg/mailer"
	"github.com/oncallkit/notifydesk/pkg/mailer/resend"
	"github.com/oncallkit/notifydesk/pkg/redis"
)

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

var ErrUnknownStorage = errors.New("config: STORAGE must be postgres or memory")

type Config struct {
	Address         string        `env:"ADDRESS" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	APITimeout      time.Duration `env:"API_TIMEOUT" envDefault:"10s"`

	// APIURL makes the dialog submit through a remote GraphQL endpoint
	// instead of the in-process service.
	APIURL string `env:"API_URL"`

	Storage string `env:"STORAGE" envDefault:"postgres"`
	// Jobs runs the river workers in this process. Postgres storage only.
	Jobs bool `env:"JOBS_ENABLED" envDefault:"true"`

	CacheTTL  time.Duration `env:"QUERY_CACHE_TTL" envDefault:"5m"`
	DialogTTL time.Duration `env:"DIALOG_TTL" envDefault:"30m"`

	Log    logger.Config
	Redis  redis.Config
	Mailer mailer.Config
	Resend resend.Config

	// Database stays nil unless storage is postgres.
	Database *db.Config
}

// Load reads .env if present and parses the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	switch cfg.Storage {
	case StorageMemory:
		cfg.Jobs = false
	case StoragePostgres:
		cfg.Database = &db.Config{}
		if err := env.Parse(cfg.Database); err != nil {
			return Config{}, fmt.Errorf("parse database config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("%w, got %q", ErrUnknownStorage, cfg.Storage)
	}

	return cfg, nil
}
