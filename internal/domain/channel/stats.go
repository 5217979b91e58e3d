package channel

import (
	"fmt"
	"time"
)

// StatsSnapshot is an append-only follower count reading.
type StatsSnapshot struct {
	ID             uint
	ChannelID      uint
	RecordedAt     time.Time
	FollowersCount int64
}

func NewStatsSnapshot(channelID uint, followers int64, recordedAt time.Time) (*StatsSnapshot, error) {
	if channelID == 0 {
		return nil, fmt.Errorf("channel ID is required")
	}
	if followers < 0 {
		return nil, fmt.Errorf("follower count cannot be negative")
	}
	return &StatsSnapshot{
		ChannelID:      channelID,
		RecordedAt:     recordedAt.UTC(),
		FollowersCount: followers,
	}, nil
}
