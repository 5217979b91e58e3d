package providers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/orris-inc/channelsync/internal/domain/channel"
	"github.com/orris-inc/channelsync/internal/shared/biztime"
	"github.com/orris-inc/channelsync/internal/shared/config"
)

const (
	instagramAPIBase   = "https://api.instagram.com"
	instagramGraphBase = "https://graph.instagram.com"
	instagramScopes    = "instagram_basic,instagram_manage_insights,pages_show_list"

	instagramShortLivedExpiry = time.Hour
)

type InstagramAdapter struct {
	clientID     string
	clientSecret string
	redirectURL  string
	authorizeURL string
	apiBase      string
	graphBase    string
	api          *apiClient
}

func NewInstagramAdapter(creds config.ProviderCredentials, redirectURL string, httpClient *http.Client) *InstagramAdapter {
	return &InstagramAdapter{
		clientID:     creds.ClientID,
		clientSecret: creds.ClientSecret,
		redirectURL:  redirectURL,
		authorizeURL: facebookDialogURL,
		apiBase:      instagramAPIBase,
		graphBase:    instagramGraphBase,
		api:          &apiClient{provider: channel.ProviderInstagram, http: httpClient},
	}
}

func (a *InstagramAdapter) Provider() channel.Provider {
	return channel.ProviderInstagram
}

func (a *InstagramAdapter) AuthorizationURL(state, _ string) string {
	return graphAuthorizationURL(a.authorizeURL, a.clientID, a.redirectURL, instagramScopes, state)
}

// ExchangeCode trades the code for a short-lived token and upgrades it to a
// long-lived one. If the upgrade fails the short-lived token is kept.
func (a *InstagramAdapter) ExchangeCode(ctx context.Context, code, _ string) (*channel.TokenGrant, error) {
	form := url.Values{}
	form.Set("client_id", a.clientID)
	form.Set("client_secret", a.clientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", a.redirectURL)
	form.Set("code", code)

	resp, err := a.api.postForm(ctx, "exchange", a.apiBase+"/oauth/access_token", form, "", "")
	if err != nil {
		return nil, &channel.TokenExchangeError{Provider: channel.ProviderInstagram, Raw: err.Error()}
	}

	var short tokenResponse
	if decodeErr := decodeLenient(resp.Body, &short); decodeErr != nil || !resp.OK() || short.AccessToken == "" {
		return nil, &channel.TokenExchangeError{Provider: channel.ProviderInstagram, StatusCode: resp.StatusCode, Raw: string(resp.Body)}
	}

	now := biztime.NowUTC()
	grant := &channel.TokenGrant{
		AccessToken: short.AccessToken,
		ExpiresAt:   expiryFrom(now, 0, instagramShortLivedExpiry),
		AccountID:   string(short.UserID),
	}

	q := url.Values{}
	q.Set("grant_type", "ig_exchange_token")
	q.Set("client_secret", a.clientSecret)
	q.Set("access_token", short.AccessToken)

	var long tokenResponse
	if err := a.api.getJSON(ctx, "exchange_long_lived", withQuery(a.graphBase+"/access_token", q), "", &long); err == nil && long.AccessToken != "" {
		grant.AccessToken = long.AccessToken
		grant.ExpiresAt = expiryFrom(now, long.expiresIn(), graphLongLivedExpiry)
	}

	return grant, nil
}

func (a *InstagramAdapter) Refresh(context.Context, string) (*channel.TokenGrant, error) {
	return nil, graphRefresh(channel.ProviderInstagram)
}

type instagramMe struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	FollowersCount *int64 `json:"followers_count"`
}

func (a *InstagramAdapter) FetchIdentity(ctx context.Context, accessToken string) (*channel.Identity, error) {
	q := url.Values{}
	q.Set("fields", "id,username,followers_count")
	q.Set("access_token", accessToken)

	var me instagramMe
	if err := a.api.getJSON(ctx, "identity", withQuery(a.graphBase+"/me", q), "", &me); err != nil {
		return nil, err
	}

	identity := &channel.Identity{
		AccountID:     me.ID,
		FollowerCount: me.FollowersCount,
	}
	if me.Username != "" {
		identity.DisplayName = "@" + me.Username
		identity.ProfileURL = "https://www.instagram.com/" + me.Username
	}
	return identity, nil
}

func (a *InstagramAdapter) FetchFollowerCount(ctx context.Context, accessToken string) (int64, error) {
	identity, err := a.FetchIdentity(ctx, accessToken)
	if err != nil {
		return 0, err
	}
	if identity.FollowerCount == nil {
		return 0, nil
	}
	return *identity.FollowerCount, nil
}

type instagramMedia struct {
	Data []struct {
		ID           string `json:"id"`
		Caption      string `json:"caption"`
		Timestamp    string `json:"timestamp"`
		MediaURL     string `json:"media_url"`
		Permalink    string `json:"permalink"`
		ThumbnailURL string `json:"thumbnail_url"`
	} `json:"data"`
}

type instagramMediaStats struct {
	LikeCount     int64 `json:"like_count"`
	CommentsCount int64 `json:"comments_count"`
}

func (a *InstagramAdapter) FetchRecentPosts(ctx context.Context, accessToken string) ([]channel.RawPost, error) {
	q := url.Values{}
	q.Set("fields", "id,caption,timestamp,media_url,permalink,thumbnail_url")
	q.Set("limit", "10")
	q.Set("access_token", accessToken)

	var media instagramMedia
	if err := a.api.getJSON(ctx, "posts", withQuery(a.graphBase+"/me/media", q), "", &media); err != nil {
		return nil, err
	}

	posts := make([]channel.RawPost, 0, len(media.Data))
	for _, m := range media.Data {
		thumb := m.ThumbnailURL
		if thumb == "" {
			thumb = m.MediaURL
		}
		post := channel.RawPost{
			ProviderPostID: m.ID,
			Title:          m.Caption,
			Description:    m.Caption,
			PostURL:        m.Permalink,
			ThumbnailURL:   thumb,
			PublishedAt:    parseTime(graphTimeLayout, m.Timestamp),
		}

		sq := url.Values{}
		sq.Set("fields", "like_count,comments_count")
		sq.Set("access_token", accessToken)
		var stats instagramMediaStats
		if err := a.api.getJSON(ctx, "post_stats", withQuery(a.graphBase+"/"+url.PathEscape(m.ID), sq), "", &stats); err == nil {
			post.Likes = stats.LikeCount
			post.Comments = stats.CommentsCount
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (a *InstagramAdapter) Revoke(ctx context.Context, accessToken string) error {
	return noopRevoke(ctx, accessToken)
}
