package mappers

import (
	"time"

	"github.com/orris-inc/channelsync/internal/domain/channel"
	"github.com/orris-inc/channelsync/internal/infrastructure/persistence/models"
)

func PostToModel(p *channel.Post) *models.PostModel {
	if p == nil {
		return nil
	}
	return &models.PostModel{
		ID:              p.ID,
		ChannelID:       p.ChannelID,
		ProviderPostID:  p.ProviderPostID,
		Title:           p.Title,
		Description:     p.Description,
		PostURL:         p.PostURL,
		ThumbnailURL:    p.ThumbnailURL,
		DurationSeconds: p.DurationSeconds,
		PublishedAt:     p.PublishedAt,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func PostToDomain(m *models.PostModel) *channel.Post {
	if m == nil {
		return nil
	}
	return &channel.Post{
		ID:              m.ID,
		ChannelID:       m.ChannelID,
		ProviderPostID:  m.ProviderPostID,
		Title:           m.Title,
		Description:     m.Description,
		PostURL:         m.PostURL,
		ThumbnailURL:    m.ThumbnailURL,
		DurationSeconds: m.DurationSeconds,
		PublishedAt:     m.PublishedAt.UTC(),
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

func PostStatsToModel(s *channel.PostStats) *models.PostStatsModel {
	return &models.PostStatsModel{
		ID:         s.ID,
		PostID:     s.PostID,
		RecordedAt: s.RecordedAt,
		Views:      s.Views,
		Likes:      s.Likes,
		Comments:   s.Comments,
		Shares:     s.Shares,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
