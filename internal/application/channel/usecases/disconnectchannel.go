package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/channelsync/internal/domain/channel"
	"github.com/orris-inc/channelsync/internal/domain/project"
	apperrors "github.com/orris-inc/channelsync/internal/shared/errors"
	"github.com/orris-inc/channelsync/internal/shared/logger"
)

type DisconnectChannelCommand struct {
	ProjectID uint
	ChannelID uint
	UserID    string
}

type DisconnectChannelUseCase struct {
	projects project.Repository
	channels channel.Repository
	registry channel.AdapterRegistry
	logger   logger.Interface
}

func NewDisconnectChannelUseCase(
	projects project.Repository,
	channels channel.Repository,
	registry channel.AdapterRegistry,
	logger logger.Interface,
) *DisconnectChannelUseCase {
	return &DisconnectChannelUseCase{
		projects: projects,
		channels: channels,
		registry: registry,
		logger:   logger,
	}
}

// Execute revokes the channel's token with its provider, best effort, and
// deletes the channel with its history.
func (uc *DisconnectChannelUseCase) Execute(ctx context.Context, cmd DisconnectChannelCommand) error {
	if _, err := uc.projects.GetOwned(ctx, cmd.ProjectID, cmd.UserID); err != nil {
		return err
	}

	ch, err := uc.channels.GetByID(ctx, cmd.ChannelID)
	if err != nil {
		return fmt.Errorf("failed to load channel: %w", err)
	}
	if ch == nil || ch.ProjectID() != cmd.ProjectID {
		return apperrors.NewNotFoundError("channel not found")
	}

	if adapter, err := uc.registry.Adapter(ch.Provider()); err != nil {
		uc.logger.Warnw("cannot revoke token, provider unavailable", "channel_id", ch.ID(), "provider", ch.Provider(), "error", err)
	} else if err := adapter.Revoke(ctx, ch.AccessToken()); err != nil {
		uc.logger.Warnw("token revocation failed", "channel_id", ch.ID(), "provider", ch.Provider(), "error", err)
	}

	if err := uc.channels.Delete(ctx, ch.ID()); err != nil {
		uc.logger.Errorw("failed to delete channel", "channel_id", ch.ID(), "error", err)
		return fmt.Errorf("failed to delete channel: %w", err)
	}

	uc.logger.Infow("channel disconnected", "channel_id", ch.ID(), "project_id", cmd.ProjectID, "provider", ch.Provider())
	return nil
}
