package providers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/orris-inc/channelsync/internal/domain/channel"
	"github.com/orris-inc/channelsync/internal/shared/biztime"
	"github.com/orris-inc/channelsync/internal/shared/config"
)

const (
	facebookGraphBase = "https://graph.facebook.com/v21.0"
	facebookScopes    = "pages_show_list,pages_read_engagement,read_insights"
)

type FacebookAdapter struct {
	clientID     string
	clientSecret string
	redirectURL  string
	authorizeURL string
	graphBase    string
	api          *apiClient
}

func NewFacebookAdapter(creds config.ProviderCredentials, redirectURL string, httpClient *http.Client) *FacebookAdapter {
	return &FacebookAdapter{
		clientID:     creds.ClientID,
		clientSecret: creds.ClientSecret,
		redirectURL:  redirectURL,
		authorizeURL: facebookDialogURL,
		graphBase:    facebookGraphBase,
		api:          &apiClient{provider: channel.ProviderFacebook, http: httpClient},
	}
}

func (a *FacebookAdapter) Provider() channel.Provider {
	return channel.ProviderFacebook
}

func (a *FacebookAdapter) AuthorizationURL(state, _ string) string {
	return graphAuthorizationURL(a.authorizeURL, a.clientID, a.redirectURL, facebookScopes, state)
}

func (a *FacebookAdapter) ExchangeCode(ctx context.Context, code, _ string) (*channel.TokenGrant, error) {
	q := url.Values{}
	q.Set("client_id", a.clientID)
	q.Set("redirect_uri", a.redirectURL)
	q.Set("client_secret", a.clientSecret)
	q.Set("code", code)

	resp, err := a.api.get(ctx, "exchange", withQuery(a.graphBase+"/oauth/access_token", q), "")
	if err != nil {
		return nil, &channel.TokenExchangeError{Provider: channel.ProviderFacebook, Raw: err.Error()}
	}

	var tok tokenResponse
	if decodeErr := decodeLenient(resp.Body, &tok); decodeErr != nil || !resp.OK() || tok.AccessToken == "" {
		return nil, &channel.TokenExchangeError{Provider: channel.ProviderFacebook, StatusCode: resp.StatusCode, Raw: string(resp.Body)}
	}

	return &channel.TokenGrant{
		AccessToken: tok.AccessToken,
		ExpiresAt:   expiryFrom(biztime.NowUTC(), tok.expiresIn(), graphLongLivedExpiry),
	}, nil
}

func (a *FacebookAdapter) Refresh(context.Context, string) (*channel.TokenGrant, error) {
	return nil, graphRefresh(channel.ProviderFacebook)
}

type facebookMe struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type facebookAccounts struct {
	Data []struct {
		ID          string `json:"id"`
		AccessToken string `json:"access_token"`
		FanCount    *int64 `json:"fan_count"`
	} `json:"data"`
}

func (a *FacebookAdapter) FetchIdentity(ctx context.Context, accessToken string) (*channel.Identity, error) {
	q := url.Values{}
	q.Set("fields", "id,name")
	q.Set("access_token", accessToken)

	var me facebookMe
	if err := a.api.getJSON(ctx, "identity", withQuery(a.graphBase+"/me", q), "", &me); err != nil {
		return nil, err
	}

	identity := &channel.Identity{
		AccountID:   me.ID,
		DisplayName: me.Name,
	}
	if me.ID != "" {
		identity.ProfileURL = "https://www.facebook.com/" + me.ID
	}
	if fans, err := a.FetchFollowerCount(ctx, accessToken); err == nil && fans > 0 {
		identity.FollowerCount = int64Ptr(fans)
	}
	return identity, nil
}

// FetchFollowerCount reads fan_count of the first page the user manages.
func (a *FacebookAdapter) FetchFollowerCount(ctx context.Context, accessToken string) (int64, error) {
	q := url.Values{}
	q.Set("fields", "fan_count")
	q.Set("access_token", accessToken)

	var accounts facebookAccounts
	if err := a.api.getJSON(ctx, "metric", withQuery(a.graphBase+"/me/accounts", q), "", &accounts); err != nil {
		return 0, err
	}
	if len(accounts.Data) == 0 || accounts.Data[0].FanCount == nil {
		return 0, nil
	}
	return *accounts.Data[0].FanCount, nil
}

type facebookPosts struct {
	Data []struct {
		ID           string `json:"id"`
		Message      string `json:"message"`
		CreatedTime  string `json:"created_time"`
		PermalinkURL string `json:"permalink_url"`
		FullPicture  string `json:"full_picture"`
	} `json:"data"`
}

type facebookPostStats struct {
	Likes    graphCount `json:"likes"`
	Comments graphCount `json:"comments"`
	Shares   struct {
		Count int64 `json:"count"`
	} `json:"shares"`
}

// FetchRecentPosts reads the latest posts of the first managed page using the page token.
func (a *FacebookAdapter) FetchRecentPosts(ctx context.Context, accessToken string) ([]channel.RawPost, error) {
	q := url.Values{}
	q.Set("fields", "id,access_token")
	q.Set("limit", "1")
	q.Set("access_token", accessToken)

	var accounts facebookAccounts
	if err := a.api.getJSON(ctx, "posts", withQuery(a.graphBase+"/me/accounts", q), "", &accounts); err != nil {
		return nil, err
	}
	if len(accounts.Data) == 0 {
		return nil, nil
	}
	page := accounts.Data[0]
	if page.AccessToken == "" {
		return nil, channel.NewTransientError(channel.ProviderFacebook, "posts", 0, errors.New("page access token missing"))
	}

	pq := url.Values{}
	pq.Set("fields", "id,message,created_time,permalink_url,full_picture")
	pq.Set("limit", "10")
	pq.Set("access_token", page.AccessToken)

	var feed facebookPosts
	if err := a.api.getJSON(ctx, "posts", withQuery(a.graphBase+"/"+url.PathEscape(page.ID)+"/posts", pq), "", &feed); err != nil {
		return nil, err
	}

	posts := make([]channel.RawPost, 0, len(feed.Data))
	for _, p := range feed.Data {
		post := channel.RawPost{
			ProviderPostID: p.ID,
			Title:          p.Message,
			Description:    p.Message,
			PostURL:        p.PermalinkURL,
			ThumbnailURL:   p.FullPicture,
			PublishedAt:    parseTime(graphTimeLayout, p.CreatedTime),
		}

		sq := url.Values{}
		sq.Set("fields", "likes.limit(0).summary(true),comments.limit(0).summary(true),shares")
		sq.Set("access_token", page.AccessToken)
		var stats facebookPostStats
		if err := a.api.getJSON(ctx, "post_stats", withQuery(a.graphBase+"/"+url.PathEscape(p.ID), sq), "", &stats); err == nil {
			post.Likes = stats.Likes.Summary.TotalCount
			post.Comments = stats.Comments.Summary.TotalCount
			post.Shares = stats.Shares.Count
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (a *FacebookAdapter) Revoke(ctx context.Context, accessToken string) error {
	return noopRevoke(ctx, accessToken)
}
