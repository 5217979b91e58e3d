package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orris-inc/channelsync/internal/domain/channel"
	"github.com/orris-inc/channelsync/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/channelsync/internal/infrastructure/persistence/models"
	"github.com/orris-inc/channelsync/internal/shared/db"
	apperrors "github.com/orris-inc/channelsync/internal/shared/errors"
	"github.com/orris-inc/channelsync/internal/shared/logger"
)

// ChannelRepository implements channel.Repository with GORM.
type ChannelRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewChannelRepository(db *gorm.DB, logger logger.Interface) *ChannelRepository {
	return &ChannelRepository{db: db, logger: logger}
}

func (r *ChannelRepository) Create(ctx context.Context, ch *channel.Channel) error {
	model := mappers.ChannelToModel(ch)

	// The savepoint keeps an enclosing postgres transaction usable after a
	// unique violation so the caller can fall back to the existing row.
	err := db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
	if err != nil {
		if apperrors.IsDuplicateError(err) {
			return fmt.Errorf("%w: %s %s", channel.ErrChannelExists, ch.Provider(), ch.AccountID())
		}
		r.logger.Errorw("failed to create channel", "project_id", ch.ProjectID(), "provider", ch.Provider(), "error", err)
		return fmt.Errorf("failed to create channel: %w", err)
	}

	return ch.SetID(model.ID)
}

func (r *ChannelRepository) Update(ctx context.Context, ch *channel.Channel) error {
	model := mappers.ChannelToModel(ch)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.ChannelModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"name":             model.Name,
			"profile_url":      model.ProfileURL,
			"access_token":     model.AccessToken,
			"refresh_token":    model.RefreshToken,
			"token_expires_at": model.TokenExpiresAt,
			"follower_count":   model.FollowerCount,
			"is_active":        model.IsActive,
			"last_synced_at":   model.LastSyncedAt,
			"updated_at":       model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update channel", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update channel: %w", result.Error)
	}
	return nil
}

func (r *ChannelRepository) UpdateTokens(ctx context.Context, ch *channel.Channel, previousAccessToken string) (bool, error) {
	model := mappers.ChannelToModel(ch)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.ChannelModel{}).
		Where("id = ? AND access_token = ?", model.ID, previousAccessToken).
		Updates(map[string]any{
			"access_token":     model.AccessToken,
			"refresh_token":    model.RefreshToken,
			"token_expires_at": model.TokenExpiresAt,
			"updated_at":       model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update channel tokens", "id", model.ID, "error", result.Error)
		return false, fmt.Errorf("failed to update channel tokens: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *ChannelRepository) DeactivateGrant(ctx context.Context, ch *channel.Channel, accessToken string) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.ChannelModel{}).
		Where("id = ? AND access_token = ? AND is_active = ?", ch.ID(), accessToken, true).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": ch.UpdatedAt(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to deactivate channel", "id", ch.ID(), "error", result.Error)
		return false, fmt.Errorf("failed to deactivate channel: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *ChannelRepository) UpdateSyncStats(ctx context.Context, ch *channel.Channel) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.ChannelModel{}).
		Where("id = ?", ch.ID()).
		Updates(map[string]any{
			"follower_count": ch.FollowerCount(),
			"last_synced_at": ch.LastSyncedAt(),
			"updated_at":     ch.UpdatedAt(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update channel sync stats", "id", ch.ID(), "error", result.Error)
		return fmt.Errorf("failed to update channel sync stats: %w", result.Error)
	}
	return nil
}

// GetByID returns nil, nil when the channel does not exist.
func (r *ChannelRepository) GetByID(ctx context.Context, id uint) (*channel.Channel, error) {
	var model models.ChannelModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	return mappers.ChannelToDomain(&model)
}

func (r *ChannelRepository) FindByAccount(ctx context.Context, projectID uint, provider channel.Provider, accountID string) (*channel.Channel, error) {
	var model models.ChannelModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("project_id = ? AND provider = ? AND account_id = ?", projectID, provider.String(), accountID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find channel by account: %w", err)
	}
	return mappers.ChannelToDomain(&model)
}

func (r *ChannelRepository) LockByAccount(ctx context.Context, projectID uint, provider channel.Provider, accountID string) (*channel.Channel, error) {
	var model models.ChannelModel
	err := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("project_id = ? AND provider = ? AND account_id = ?", projectID, provider.String(), accountID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock channel by account: %w", err)
	}
	return mappers.ChannelToDomain(&model)
}

func (r *ChannelRepository) ListActive(ctx context.Context) ([]*channel.Channel, error) {
	var items []*models.ChannelModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list active channels: %w", err)
	}
	return mappers.ChannelsToDomain(items)
}

func (r *ChannelRepository) ListByProject(ctx context.Context, projectID uint) ([]*channel.Channel, error) {
	var items []*models.ChannelModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("project_id = ?", projectID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list project channels: %w", err)
	}
	return mappers.ChannelsToDomain(items)
}

// Delete removes the channel, its follower history, its posts and their stats.
func (r *ChannelRepository) Delete(ctx context.Context, id uint) error {
	return db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		postIDs := tx.Model(&models.PostModel{}).Select("id").Where("channel_id = ?", id)
		if err := tx.Where("post_id IN (?)", postIDs).Delete(&models.PostStatsModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete post stats: %w", err)
		}
		if err := tx.Where("channel_id = ?", id).Delete(&models.PostModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete posts: %w", err)
		}
		if err := tx.Where("channel_id = ?", id).Delete(&models.ChannelStatsModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete channel stats: %w", err)
		}

		result := tx.Delete(&models.ChannelModel{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete channel: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.NewNotFoundError("channel not found")
		}
		return nil
	})
}
