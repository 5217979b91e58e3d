package http

import (
	"gorm.io/gorm"

	"github.com/orris-inc/channelsync/internal/domain/channel"
	"github.com/orris-inc/channelsync/internal/domain/project"
	"github.com/orris-inc/channelsync/internal/infrastructure/repository"
	"github.com/orris-inc/channelsync/internal/shared/logger"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	projectRepo      project.Repository
	channelRepo      channel.Repository
	channelStatsRepo channel.StatsRepository
	postRepo         channel.PostRepository
}

func newRepositories(db *gorm.DB, log logger.Interface) *repositories {
	return &repositories{
		projectRepo:      repository.NewProjectRepository(db),
		channelRepo:      repository.NewChannelRepository(db, log),
		channelStatsRepo: repository.NewChannelStatsRepository(db),
		postRepo:         repository.NewPostRepository(db),
	}
}
