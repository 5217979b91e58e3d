package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/channelsync/internal/application/channel/dto"
	"github.com/orris-inc/channelsync/internal/domain/channel"
	"github.com/orris-inc/channelsync/internal/domain/project"
	"github.com/orris-inc/channelsync/internal/shared/logger"
)

type ListProjectChannelsQuery struct {
	ProjectID uint
	UserID    string
}

type ListProjectChannelsUseCase struct {
	projects project.Repository
	channels channel.Repository
	logger   logger.Interface
}

func NewListProjectChannelsUseCase(
	projects project.Repository,
	channels channel.Repository,
	logger logger.Interface,
) *ListProjectChannelsUseCase {
	return &ListProjectChannelsUseCase{
		projects: projects,
		channels: channels,
		logger:   logger,
	}
}

func (uc *ListProjectChannelsUseCase) Execute(ctx context.Context, query ListProjectChannelsQuery) ([]*dto.ChannelDTO, error) {
	if _, err := uc.projects.GetOwned(ctx, query.ProjectID, query.UserID); err != nil {
		return nil, err
	}

	channels, err := uc.channels.ListByProject(ctx, query.ProjectID)
	if err != nil {
		uc.logger.Errorw("failed to list channels", "project_id", query.ProjectID, "error", err)
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	return dto.ToChannelDTOs(channels), nil
}
