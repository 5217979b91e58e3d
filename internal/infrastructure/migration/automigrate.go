package migration

import (
	"github.com/orris-inc/channelsync/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []any {
	return []any{
		&models.ProjectModel{},
		&models.ChannelModel{},
		&models.ChannelStatsModel{},
		&models.PostModel{},
		&models.PostStatsModel{},
	}
}
