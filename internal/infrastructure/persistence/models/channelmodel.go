package models

import "time"

// ChannelModel is the persisted form of a linked social account.
type ChannelModel struct {
	ID             uint       `gorm:"primarykey"`
	ProjectID      uint       `gorm:"not null;uniqueIndex:idx_channel_account,priority:1;index:idx_channel_project"`
	Provider       string     `gorm:"not null;size:20;uniqueIndex:idx_channel_account,priority:2"`
	AccountID      string     `gorm:"not null;size:255;uniqueIndex:idx_channel_account,priority:3;column:account_id"`
	Name           string     `gorm:"size:255"`
	ProfileURL     string     `gorm:"size:500;column:profile_url"`
	AccessToken    string     `gorm:"type:text;not null"`
	RefreshToken   string     `gorm:"type:text"`
	TokenExpiresAt *time.Time `gorm:"column:token_expires_at"`
	FollowerCount  *int64
	IsActive       bool `gorm:"not null;default:true;index:idx_channel_active"`
	LastSyncedAt   *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (ChannelModel) TableName() string {
	return "channels"
}

// ChannelStatsModel is one follower-count reading. Rows are never updated.
type ChannelStatsModel struct {
	ID             uint      `gorm:"primarykey"`
	ChannelID      uint      `gorm:"not null;index:idx_channel_stats_channel_recorded,priority:1"`
	RecordedAt     time.Time `gorm:"not null;index:idx_channel_stats_channel_recorded,priority:2"`
	FollowersCount int64     `gorm:"not null;default:0"`
}

func (ChannelStatsModel) TableName() string {
	return "channel_stats"
}
