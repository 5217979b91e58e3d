package dto

import (
	"time"

	"github.com/orris-inc/channelsync/internal/domain/channel"
)

// ChannelDTO is the public view of a linked channel. Credentials never leave the service.
type ChannelDTO struct {
	ID            uint       `json:"id"`
	ProjectID     uint       `json:"project_id"`
	Provider      string     `json:"provider"`
	AccountID     string     `json:"account_id"`
	Name          string     `json:"name"`
	ProfileURL    string     `json:"profile_url,omitempty"`
	FollowerCount *int64     `json:"follower_count"`
	Active        bool       `json:"active"`
	LastSyncedAt  *time.Time `json:"last_synced_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

func ToChannelDTO(ch *channel.Channel) *ChannelDTO {
	if ch == nil {
		return nil
	}
	return &ChannelDTO{
		ID:            ch.ID(),
		ProjectID:     ch.ProjectID(),
		Provider:      ch.Provider().String(),
		AccountID:     ch.AccountID(),
		Name:          ch.Name(),
		ProfileURL:    ch.ProfileURL(),
		FollowerCount: ch.FollowerCount(),
		Active:        ch.IsActive(),
		LastSyncedAt:  ch.LastSyncedAt(),
		CreatedAt:     ch.CreatedAt(),
	}
}

func ToChannelDTOs(channels []*channel.Channel) []*ChannelDTO {
	out := make([]*ChannelDTO, 0, len(channels))
	for _, ch := range channels {
		out = append(out, ToChannelDTO(ch))
	}
	return out
}
