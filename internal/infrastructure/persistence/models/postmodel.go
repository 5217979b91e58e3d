package models

import "time"

type PostModel struct {
	ID              uint   `gorm:"primarykey"`
	ChannelID       uint   `gorm:"not null;uniqueIndex:idx_post_provider_id,priority:1"`
	ProviderPostID  string `gorm:"not null;size:255;uniqueIndex:idx_post_provider_id,priority:2;column:provider_post_id"`
	Title           string `gorm:"size:2000"`
	Description     string `gorm:"type:text"`
	PostURL         string `gorm:"size:1000;column:post_url"`
	ThumbnailURL    string `gorm:"size:1000;column:thumbnail_url"`
	DurationSeconds *int
	PublishedAt     time.Time `gorm:"not null;index:idx_post_published"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (PostModel) TableName() string {
	return "posts"
}

type PostStatsModel struct {
	ID         uint      `gorm:"primarykey"`
	PostID     uint      `gorm:"not null;index:idx_post_stats_post_recorded,priority:1"`
	RecordedAt time.Time `gorm:"not null;index:idx_post_stats_post_recorded,priority:2"`
	Views      int64     `gorm:"not null;default:0"`
	Likes      int64     `gorm:"not null;default:0"`
	Comments   int64     `gorm:"not null;default:0"`
	Shares     int64     `gorm:"not null;default:0"`
}

func (PostStatsModel) TableName() string {
	return "post_stats"
}
