package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/channelsync/internal/domain/channel"
	"github.com/orris-inc/channelsync/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/channelsync/internal/infrastructure/persistence/models"
	"github.com/orris-inc/channelsync/internal/shared/db"
	apperrors "github.com/orris-inc/channelsync/internal/shared/errors"
	"github.com/orris-inc/channelsync/internal/shared/mapper"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// FindByProviderPostID returns nil, nil when the post is not stored yet.
func (r *PostRepository) FindByProviderPostID(ctx context.Context, channelID uint, providerPostID string) (*channel.Post, error) {
	var model models.PostModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("channel_id = ? AND provider_post_id = ?", channelID, providerPostID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	return mappers.PostToDomain(&model), nil
}

// Save inserts a new post or updates a stored one. An insert that loses a race
// against a concurrent sync of the same channel falls back to an update.
func (r *PostRepository) Save(ctx context.Context, post *channel.Post) error {
	tx := db.GetTxFromContext(ctx, r.db)
	model := mappers.PostToModel(post)

	if model.ID == 0 {
		err := tx.Create(model).Error
		if err == nil {
			post.ID = model.ID
			return nil
		}
		if !apperrors.IsDuplicateError(err) {
			return fmt.Errorf("failed to create post: %w", err)
		}

		var existing models.PostModel
		if err := tx.Select("id").
			Where("channel_id = ? AND provider_post_id = ?", model.ChannelID, model.ProviderPostID).
			First(&existing).Error; err != nil {
			return fmt.Errorf("failed to resolve duplicate post: %w", err)
		}
		post.ID = existing.ID

		// Struct updates skip zero values, so only what this sync saw is written.
		patch := models.PostModel{
			Title:           model.Title,
			Description:     model.Description,
			PostURL:         model.PostURL,
			ThumbnailURL:    model.ThumbnailURL,
			DurationSeconds: model.DurationSeconds,
			UpdatedAt:       model.UpdatedAt,
		}
		if err := tx.Model(&models.PostModel{}).Where("id = ?", existing.ID).Updates(&patch).Error; err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}
		return nil
	}

	if err := tx.Model(&models.PostModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"title":            model.Title,
			"description":      model.Description,
			"post_url":         model.PostURL,
			"thumbnail_url":    model.ThumbnailURL,
			"duration_seconds": model.DurationSeconds,
			"updated_at":       model.UpdatedAt,
		}).Error; err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

func (r *PostRepository) AppendStats(ctx context.Context, stats *channel.PostStats) error {
	model := mappers.PostStatsToModel(stats)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to append post stats: %w", err)
	}
	stats.ID = model.ID
	return nil
}

// ListByChannel returns the most recently published posts first.
func (r *PostRepository) ListByChannel(ctx context.Context, channelID uint, limit int) ([]*channel.Post, error) {
	query := db.GetTxFromContext(ctx, r.db).
		Where("channel_id = ?", channelID).
		Order("published_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var items []*models.PostModel
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return mapper.MapSlicePtr(items, mappers.PostToDomain), nil
}
