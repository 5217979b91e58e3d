// Package bootstrap loads configuration and initializes the process-wide
// logger, timezone and database for the CLI commands.
package bootstrap

import (
	"fmt"
	"os"

	"github.com/orris-inc/channelsync/internal/infrastructure/config"
	"github.com/orris-inc/channelsync/internal/infrastructure/database"
	"github.com/orris-inc/channelsync/internal/shared/biztime"
	"github.com/orris-inc/channelsync/internal/shared/logger"
)

// Options are the flags shared by every command.
type Options struct {
	Env        string
	ConfigPath string
}

// ResolveEnv lets the ENV variable override the --env flag.
func (o *Options) ResolveEnv() string {
	if envVar := os.Getenv("ENV"); envVar != "" {
		o.Env = envVar
	}
	return o.Env
}

// Config loads configuration and initializes logging and the business timezone.
func Config(opts *Options) (*config.Config, logger.Interface, error) {
	env := opts.ResolveEnv()

	cfg, err := config.Load(MapEnvToGinMode(env), opts.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode == "debug"); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	return cfg, logger.NewLogger(), nil
}

// ConfigAndDatabase is Config plus the database connection. Callers close the
// connection with database.Close.
func ConfigAndDatabase(opts *Options) (*config.Config, logger.Interface, error) {
	cfg, log, err := Config(opts)
	if err != nil {
		return nil, nil, err
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return cfg, log, nil
}

// MapEnvToGinMode maps a deployment environment name onto a gin mode.
func MapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	case "development", "dev", "debug":
		return "debug"
	default:
		return ""
	}
}
