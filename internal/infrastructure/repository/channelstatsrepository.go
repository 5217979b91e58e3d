package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/channelsync/internal/domain/channel"
	"github.com/orris-inc/channelsync/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/channelsync/internal/infrastructure/persistence/models"
	"github.com/orris-inc/channelsync/internal/shared/db"
	"github.com/orris-inc/channelsync/internal/shared/mapper"
)

// ChannelStatsRepository stores follower snapshots. Snapshots are append-only.
type ChannelStatsRepository struct {
	db *gorm.DB
}

func NewChannelStatsRepository(db *gorm.DB) *ChannelStatsRepository {
	return &ChannelStatsRepository{db: db}
}

func (r *ChannelStatsRepository) Append(ctx context.Context, snapshot *channel.StatsSnapshot) error {
	model := mappers.StatsSnapshotToModel(snapshot)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to append channel stats: %w", err)
	}
	snapshot.ID = model.ID
	return nil
}

// ListByChannel returns the newest snapshots first. limit <= 0 returns all.
func (r *ChannelStatsRepository) ListByChannel(ctx context.Context, channelID uint, limit int) ([]*channel.StatsSnapshot, error) {
	query := db.GetTxFromContext(ctx, r.db).
		Where("channel_id = ?", channelID).
		Order("recorded_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var items []*models.ChannelStatsModel
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list channel stats: %w", err)
	}
	return mapper.MapSlicePtr(items, mappers.StatsSnapshotToDomain), nil
}
