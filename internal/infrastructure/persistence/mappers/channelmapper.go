package mappers

import (
	"github.com/orris-inc/channelsync/internal/domain/channel"
	"github.com/orris-inc/channelsync/internal/infrastructure/persistence/models"
	"github.com/orris-inc/channelsync/internal/shared/mapper"
)

func ChannelToModel(ch *channel.Channel) *models.ChannelModel {
	if ch == nil {
		return nil
	}
	return &models.ChannelModel{
		ID:             ch.ID(),
		ProjectID:      ch.ProjectID(),
		Provider:       ch.Provider().String(),
		AccountID:      ch.AccountID(),
		Name:           ch.Name(),
		ProfileURL:     ch.ProfileURL(),
		AccessToken:    ch.AccessToken(),
		RefreshToken:   ch.RefreshToken(),
		TokenExpiresAt: ch.TokenExpiresAt(),
		FollowerCount:  ch.FollowerCount(),
		IsActive:       ch.IsActive(),
		LastSyncedAt:   ch.LastSyncedAt(),
		CreatedAt:      ch.CreatedAt(),
		UpdatedAt:      ch.UpdatedAt(),
	}
}

func ChannelToDomain(m *models.ChannelModel) (*channel.Channel, error) {
	if m == nil {
		return nil, nil
	}
	return channel.ReconstructChannel(
		m.ID,
		m.ProjectID,
		channel.Provider(m.Provider),
		m.AccountID,
		m.Name,
		m.ProfileURL,
		m.AccessToken,
		m.RefreshToken,
		utcPtr(m.TokenExpiresAt),
		m.FollowerCount,
		m.IsActive,
		utcPtr(m.LastSyncedAt),
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
	)
}

func ChannelsToDomain(items []*models.ChannelModel) ([]*channel.Channel, error) {
	return mapper.MapSlicePtrWithID(items, ChannelToDomain, func(m *models.ChannelModel) uint { return m.ID })
}

func StatsSnapshotToModel(s *channel.StatsSnapshot) *models.ChannelStatsModel {
	return &models.ChannelStatsModel{
		ID:             s.ID,
		ChannelID:      s.ChannelID,
		RecordedAt:     s.RecordedAt,
		FollowersCount: s.FollowersCount,
	}
}

func StatsSnapshotToDomain(m *models.ChannelStatsModel) *channel.StatsSnapshot {
	return &channel.StatsSnapshot{
		ID:             m.ID,
		ChannelID:      m.ChannelID,
		RecordedAt:     m.RecordedAt.UTC(),
		FollowersCount: m.FollowersCount,
	}
}
