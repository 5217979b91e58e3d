package handlers

import (
	"context"

	"github.com/orris-inc/channelsync/internal/application/channel/dto"
	"github.com/orris-inc/channelsync/internal/application/channel/usecases"
)

// Use case interfaces for OAuthHandler

type buildAuthorizationURLUseCase interface {
	Execute(ctx context.Context, cmd usecases.BuildAuthorizationURLCommand) (*usecases.BuildAuthorizationURLResult, error)
}

type handleCallbackUseCase interface {
	Execute(ctx context.Context, cmd usecases.HandleCallbackCommand) (*usecases.HandleCallbackResult, error)
}

// Use case interfaces for ChannelHandler

type listProjectChannelsUseCase interface {
	Execute(ctx context.Context, query usecases.ListProjectChannelsQuery) ([]*dto.ChannelDTO, error)
}

type disconnectChannelUseCase interface {
	Execute(ctx context.Context, cmd usecases.DisconnectChannelCommand) error
}
