package channel

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPost(t *testing.T) {
	now := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)

	t.Run("published defaults to now", func(t *testing.T) {
		p, err := NewPost(1, RawPost{ProviderPostID: "v1", Title: "hello"}, now)
		require.NoError(t, err)
		assert.Equal(t, now, p.PublishedAt)
	})

	t.Run("title truncated by rune", func(t *testing.T) {
		p, err := NewPost(1, RawPost{ProviderPostID: "v1", Title: strings.Repeat("é", 600)}, now)
		require.NoError(t, err)
		assert.Equal(t, 500, utf8.RuneCountInString(p.Title))
	})

	t.Run("requires ids", func(t *testing.T) {
		_, err := NewPost(0, RawPost{ProviderPostID: "v1"}, now)
		assert.Error(t, err)
		_, err = NewPost(1, RawPost{}, now)
		assert.Error(t, err)
	})
}

func TestPost_MergeKeepsStoredValues(t *testing.T) {
	now := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)
	dur := 30
	p, err := NewPost(1, RawPost{ProviderPostID: "v1", Title: "t", Description: "d", ThumbnailURL: "thumb", DurationSeconds: &dur}, now)
	require.NoError(t, err)

	p.Merge(RawPost{ProviderPostID: "v1", Title: "t2"}, now.Add(time.Hour))

	assert.Equal(t, "t2", p.Title)
	assert.Equal(t, "d", p.Description)
	assert.Equal(t, "thumb", p.ThumbnailURL)
	require.NotNil(t, p.DurationSeconds)
	assert.Equal(t, 30, *p.DurationSeconds)
	assert.Equal(t, now, p.PublishedAt)
	assert.Equal(t, now.Add(time.Hour), p.UpdatedAt)
}

func TestNewStatsSnapshot(t *testing.T) {
	_, err := NewStatsSnapshot(0, 1, time.Now())
	assert.Error(t, err)
	_, err = NewStatsSnapshot(1, -1, time.Now())
	assert.Error(t, err)

	s, err := NewStatsSnapshot(1, 100, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(100), s.FollowersCount)
	assert.Equal(t, time.UTC, s.RecordedAt.Location())
}
