package migration

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/orris-inc/channelsync/internal/shared/logger"
)

const (
	StrategyGoose = "goose"
	StrategyAuto  = "auto"
)

// Manager handles database migrations with different strategies
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks goose for the versioned dialects and auto-migration
// otherwise. name overrides the choice when set.
func NewManager(driver, name string, log logger.Interface) (*Manager, error) {
	var strategy Strategy

	switch strings.ToLower(name) {
	case StrategyGoose:
		strategy = NewGooseStrategy(driver, log)
	case StrategyAuto:
		strategy = NewGormAutoMigrateStrategy(log)
	case "":
		if driver == "sqlite" {
			strategy = NewGormAutoMigrateStrategy(log)
		} else {
			strategy = NewGooseStrategy(driver, log)
		}
	default:
		return nil, fmt.Errorf("unknown migration strategy %q", name)
	}

	return NewManagerWithStrategy(strategy, log), nil
}

func NewManagerWithStrategy(strategy Strategy, log logger.Interface) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   log.With("component", "migration.manager"),
	}
}

// Migrate executes the configured migration strategy
func (m *Manager) Migrate(db *gorm.DB) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(db, AutoMigrateModels()...); err != nil {
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed", "strategy", m.strategy.GetName())
	return nil
}

func (m *Manager) Strategy() Strategy {
	return m.strategy
}
