package channel

import (
	"fmt"
	"time"
	"unicode/utf8"
)

const maxTitleRunes = 500

// Post is a piece of content published on a channel, keyed by
// (ChannelID, ProviderPostID).
type Post struct {
	ID              uint
	ChannelID       uint
	ProviderPostID  string
	Title           string
	Description     string
	PostURL         string
	ThumbnailURL    string
	DurationSeconds *int
	PublishedAt     time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PostStats is an append-only engagement reading for a post.
type PostStats struct {
	ID         uint
	PostID     uint
	RecordedAt time.Time
	Views      int64
	Likes      int64
	Comments   int64
	Shares     int64
}

// NewPost creates a post from a provider record. PublishedAt falls back to now.
func NewPost(channelID uint, raw RawPost, now time.Time) (*Post, error) {
	if channelID == 0 {
		return nil, fmt.Errorf("channel ID is required")
	}
	if raw.ProviderPostID == "" {
		return nil, fmt.Errorf("provider post ID is required")
	}

	published := now.UTC()
	if raw.PublishedAt != nil {
		published = raw.PublishedAt.UTC()
	}

	return &Post{
		ChannelID:       channelID,
		ProviderPostID:  raw.ProviderPostID,
		Title:           truncateRunes(raw.Title, maxTitleRunes),
		Description:     raw.Description,
		PostURL:         raw.PostURL,
		ThumbnailURL:    raw.ThumbnailURL,
		DurationSeconds: raw.DurationSeconds,
		PublishedAt:     published,
		CreatedAt:       now.UTC(),
		UpdatedAt:       now.UTC(),
	}, nil
}

// Merge copies the mutable fields the provider reported. Empty values keep
// what is already stored.
func (p *Post) Merge(raw RawPost, now time.Time) {
	if raw.Title != "" {
		p.Title = truncateRunes(raw.Title, maxTitleRunes)
	}
	if raw.Description != "" {
		p.Description = raw.Description
	}
	if raw.PostURL != "" {
		p.PostURL = raw.PostURL
	}
	if raw.ThumbnailURL != "" {
		p.ThumbnailURL = raw.ThumbnailURL
	}
	if raw.DurationSeconds != nil {
		p.DurationSeconds = raw.DurationSeconds
	}
	p.UpdatedAt = now.UTC()
}

// NewPostStats records the engagement counters of raw for a stored post.
func NewPostStats(postID uint, raw RawPost, recordedAt time.Time) *PostStats {
	return &PostStats{
		PostID:     postID,
		RecordedAt: recordedAt.UTC(),
		Views:      raw.Views,
		Likes:      raw.Likes,
		Comments:   raw.Comments,
		Shares:     raw.Shares,
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
