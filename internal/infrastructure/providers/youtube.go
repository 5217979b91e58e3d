package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/orris-inc/channelsync/internal/domain/channel"
	"github.com/orris-inc/channelsync/internal/shared/config"
)

const (
	youtubeDefaultExpiry = 3600 * time.Second
	youtubePostLimit     = 10
)

var youtubeScopes = []string{
	"https://www.googleapis.com/auth/youtube.readonly",
	"https://www.googleapis.com/auth/yt-analytics.readonly",
}

type YouTubeAdapter struct {
	flow *oauth2Flow
	// apiEndpoint overrides the YouTube Data API base URL when set.
	apiEndpoint string
}

func NewYouTubeAdapter(creds config.ProviderCredentials, redirectURL string, httpClient *http.Client) *YouTubeAdapter {
	return &YouTubeAdapter{
		flow: &oauth2Flow{
			provider: channel.ProviderYouTube,
			config: &oauth2.Config{
				ClientID:     creds.ClientID,
				ClientSecret: creds.ClientSecret,
				RedirectURL:  redirectURL,
				Scopes:       youtubeScopes,
				Endpoint:     google.Endpoint,
			},
			httpClient:    httpClient,
			defaultExpiry: youtubeDefaultExpiry,
		},
	}
}

func (a *YouTubeAdapter) Provider() channel.Provider {
	return channel.ProviderYouTube
}

// AuthorizationURL asks for offline access with a forced consent screen so
// Google always returns a refresh token.
func (a *YouTubeAdapter) AuthorizationURL(state, _ string) string {
	return a.flow.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (a *YouTubeAdapter) ExchangeCode(ctx context.Context, code, _ string) (*channel.TokenGrant, error) {
	return a.flow.exchange(ctx, code)
}

func (a *YouTubeAdapter) Refresh(ctx context.Context, refreshToken string) (*channel.TokenGrant, error) {
	return a.flow.refresh(ctx, refreshToken)
}

func (a *YouTubeAdapter) service(ctx context.Context, accessToken string) (*youtube.Service, error) {
	client := oauth2.NewClient(a.flow.context(ctx), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	client.Timeout = a.flow.httpClient.Timeout

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if a.apiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(a.apiEndpoint))
	}

	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return svc, nil
}

func (a *YouTubeAdapter) myChannel(ctx context.Context, accessToken, op string) (*youtube.Channel, error) {
	svc, err := a.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Channels.List([]string{"snippet", "statistics"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return nil, classifyGoogleAPIError(op, err)
	}
	if len(resp.Items) == 0 {
		return nil, channel.NewTransientError(channel.ProviderYouTube, op, 0, errors.New("no channel for this account"))
	}
	return resp.Items[0], nil
}

func (a *YouTubeAdapter) FetchIdentity(ctx context.Context, accessToken string) (*channel.Identity, error) {
	ch, err := a.myChannel(ctx, accessToken, "identity")
	if err != nil {
		return nil, err
	}

	identity := &channel.Identity{
		AccountID:  ch.Id,
		ProfileURL: "https://www.youtube.com/channel/" + ch.Id,
	}
	if ch.Snippet != nil {
		identity.DisplayName = ch.Snippet.Title
		if ch.Snippet.CustomUrl != "" {
			identity.ProfileURL = "https://www.youtube.com/" + ch.Snippet.CustomUrl
		}
	}
	if ch.Statistics != nil && !ch.Statistics.HiddenSubscriberCount {
		identity.FollowerCount = int64Ptr(int64(ch.Statistics.SubscriberCount))
	}
	return identity, nil
}

func (a *YouTubeAdapter) FetchFollowerCount(ctx context.Context, accessToken string) (int64, error) {
	ch, err := a.myChannel(ctx, accessToken, "metric")
	if err != nil {
		return 0, err
	}
	if ch.Statistics == nil {
		return 0, nil
	}
	return int64(ch.Statistics.SubscriberCount), nil
}

// FetchRecentPosts searches the newest uploads and loads their statistics in one videos.list call.
func (a *YouTubeAdapter) FetchRecentPosts(ctx context.Context, accessToken string) ([]channel.RawPost, error) {
	svc, err := a.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	search, err := svc.Search.List([]string{"snippet"}).
		ForMine(true).
		Type("video").
		MaxResults(youtubePostLimit).
		Order("date").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifyGoogleAPIError("posts", err)
	}

	ids := make([]string, 0, len(search.Items))
	for _, item := range search.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	videos, err := svc.Videos.List([]string{"statistics", "contentDetails", "snippet"}).Id(strings.Join(ids, ",")).Context(ctx).Do()
	if err != nil {
		return nil, classifyGoogleAPIError("post_stats", err)
	}

	posts := make([]channel.RawPost, 0, len(videos.Items))
	for _, v := range videos.Items {
		post := channel.RawPost{
			ProviderPostID: v.Id,
			PostURL:        "https://www.youtube.com/watch?v=" + v.Id,
		}
		if v.Snippet != nil {
			post.Title = v.Snippet.Title
			post.Description = v.Snippet.Description
			post.PublishedAt = parseTime(time.RFC3339, v.Snippet.PublishedAt)
			if v.Snippet.Thumbnails != nil && v.Snippet.Thumbnails.Medium != nil {
				post.ThumbnailURL = v.Snippet.Thumbnails.Medium.Url
			}
		}
		if v.ContentDetails != nil {
			if secs, ok := parseISO8601Duration(v.ContentDetails.Duration); ok {
				post.DurationSeconds = &secs
			}
		}
		if v.Statistics != nil {
			post.Views = int64(v.Statistics.ViewCount)
			post.Likes = int64(v.Statistics.LikeCount)
			post.Comments = int64(v.Statistics.CommentCount)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// Revoke is a no-op. Google grants are revoked from the account's security page.
func (a *YouTubeAdapter) Revoke(ctx context.Context, accessToken string) error {
	return noopRevoke(ctx, accessToken)
}

func classifyGoogleAPIError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return channel.NewTransientError(channel.ProviderYouTube, op, gerr.Code, err)
	}
	return channel.NewTransientError(channel.ProviderYouTube, op, 0, err)
}
