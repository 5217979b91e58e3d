package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/orris-inc/channelsync/internal/domain/channel"
	"github.com/orris-inc/channelsync/internal/shared/biztime"
	"github.com/orris-inc/channelsync/internal/shared/config"
)

const (
	tiktokAuthorizeURL = "https://www.tiktok.com/v2/auth/authorize/"
	tiktokAPIBase      = "https://open.tiktokapis.com"
	tiktokScopes       = "user.info.basic,user.info.profile,user.info.stats,video.list"

	tiktokDefaultExpiry = 86400 * time.Second
	tiktokPostLimit     = 10
)

// codes TikTok uses for a refresh token that is expired or revoked
var tiktokPermanentCodes = map[string]bool{
	"10010":         true,
	"invalid_grant": true,
}

type TikTokAdapter struct {
	clientKey    string
	clientSecret string
	redirectURL  string
	authorizeURL string
	apiBase      string
	api          *apiClient
}

func NewTikTokAdapter(creds config.ProviderCredentials, redirectURL string, httpClient *http.Client) *TikTokAdapter {
	return &TikTokAdapter{
		clientKey:    creds.ClientID,
		clientSecret: creds.ClientSecret,
		redirectURL:  redirectURL,
		authorizeURL: tiktokAuthorizeURL,
		apiBase:      tiktokAPIBase,
		api:          &apiClient{provider: channel.ProviderTikTok, http: httpClient},
	}
}

func (a *TikTokAdapter) Provider() channel.Provider {
	return channel.ProviderTikTok
}

func (a *TikTokAdapter) AuthorizationURL(state, codeChallenge string) string {
	q := url.Values{}
	q.Set("client_key", a.clientKey)
	q.Set("redirect_uri", a.redirectURL)
	q.Set("response_type", "code")
	q.Set("scope", tiktokScopes)
	q.Set("state", state)
	if codeChallenge != "" {
		q.Set("code_challenge", codeChallenge)
		q.Set("code_challenge_method", "S256")
	}
	return a.authorizeURL + "?" + q.Encode()
}

func (a *TikTokAdapter) ExchangeCode(ctx context.Context, code, codeVerifier string) (*channel.TokenGrant, error) {
	form := url.Values{}
	form.Set("client_key", a.clientKey)
	form.Set("client_secret", a.clientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", a.redirectURL)
	if codeVerifier != "" {
		form.Set("code_verifier", codeVerifier)
	}

	resp, err := a.api.postForm(ctx, "exchange", a.apiBase+"/v2/oauth/token/", form, "", "")
	if err != nil {
		return nil, &channel.TokenExchangeError{Provider: channel.ProviderTikTok, Raw: err.Error()}
	}

	var tok tokenResponse
	if decodeErr := decodeLenient(resp.Body, &tok); decodeErr != nil || !resp.OK() || tok.AccessToken == "" {
		return nil, &channel.TokenExchangeError{Provider: channel.ProviderTikTok, StatusCode: resp.StatusCode, Raw: string(resp.Body)}
	}

	return &channel.TokenGrant{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiryFrom(biztime.NowUTC(), tok.expiresIn(), tiktokDefaultExpiry),
		AccountID:    tok.OpenID,
	}, nil
}

func (a *TikTokAdapter) Refresh(ctx context.Context, refreshToken string) (*channel.TokenGrant, error) {
	if refreshToken == "" {
		return nil, channel.NewPermanentError(channel.ProviderTikTok, "refresh", "", errors.New("no refresh token present"))
	}

	form := url.Values{}
	form.Set("client_key", a.clientKey)
	form.Set("client_secret", a.clientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	resp, err := a.api.postForm(ctx, "refresh", a.apiBase+"/v2/oauth/token/", form, "", "")
	if err != nil {
		return nil, err
	}
	if resp.retryable() {
		return nil, channel.NewTransientError(channel.ProviderTikTok, "refresh", resp.StatusCode, errors.New(truncate(string(resp.Body), 512)))
	}

	var tok tokenResponse
	if err := decodeLenient(resp.Body, &tok); err != nil {
		return nil, channel.NewTransientError(channel.ProviderTikTok, "refresh", resp.StatusCode, err)
	}
	for _, code := range []string{string(tok.ErrorCode), string(tok.Error)} {
		if tiktokPermanentCodes[code] {
			return nil, channel.NewPermanentError(channel.ProviderTikTok, "refresh", code, errors.New(tok.ErrorDescription))
		}
	}
	if !resp.OK() || tok.AccessToken == "" {
		return nil, channel.NewTransientError(channel.ProviderTikTok, "refresh", resp.StatusCode, fmt.Errorf("no access token in response: %s", truncate(string(resp.Body), 512)))
	}

	return &channel.TokenGrant{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiryFrom(biztime.NowUTC(), tok.expiresIn(), tiktokDefaultExpiry),
		AccountID:    tok.OpenID,
	}, nil
}

type tiktokEnvelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e tiktokEnvelopeError) failed() bool {
	return e.Code != "" && e.Code != "ok"
}

type tiktokUserInfo struct {
	Data struct {
		User struct {
			OpenID        string `json:"open_id"`
			Username      string `json:"username"`
			DisplayName   string `json:"display_name"`
			AvatarURL     string `json:"avatar_url"`
			FollowerCount *int64 `json:"follower_count"`
		} `json:"user"`
	} `json:"data"`
	Error tiktokEnvelopeError `json:"error"`
}

func (a *TikTokAdapter) FetchIdentity(ctx context.Context, accessToken string) (*channel.Identity, error) {
	endpoint := a.apiBase + "/v2/user/info/?fields=open_id,username,display_name,avatar_url,follower_count"

	var info tiktokUserInfo
	if err := a.api.getJSON(ctx, "identity", endpoint, accessToken, &info); err != nil {
		return nil, err
	}
	if info.Error.failed() {
		return nil, channel.NewTransientError(channel.ProviderTikTok, "identity", 0, fmt.Errorf("%s: %s", info.Error.Code, info.Error.Message))
	}

	u := info.Data.User
	identity := &channel.Identity{
		AccountID:     u.OpenID,
		DisplayName:   tiktokDisplayName(u.DisplayName, u.Username),
		FollowerCount: u.FollowerCount,
	}
	if u.Username != "" {
		identity.ProfileURL = "https://www.tiktok.com/@" + u.Username
	}
	return identity, nil
}

func tiktokDisplayName(displayName, username string) string {
	switch {
	case displayName != "":
		return displayName
	case username != "":
		return "@" + username
	default:
		return "TikTok User"
	}
}

func (a *TikTokAdapter) FetchFollowerCount(ctx context.Context, accessToken string) (int64, error) {
	identity, err := a.FetchIdentity(ctx, accessToken)
	if err != nil {
		return 0, err
	}
	if identity.FollowerCount == nil {
		return 0, nil
	}
	return *identity.FollowerCount, nil
}

type tiktokVideoList struct {
	Data struct {
		Videos []struct {
			ID            string `json:"id"`
			Title         string `json:"title"`
			CreateTime    int64  `json:"create_time"`
			CoverImageURL string `json:"cover_image_url"`
			Duration      int    `json:"duration"`
			ShareURL      string `json:"share_url"`
		} `json:"videos"`
	} `json:"data"`
	Error tiktokEnvelopeError `json:"error"`
}

type tiktokVideoQuery struct {
	Data struct {
		Videos []struct {
			ID           string `json:"id"`
			LikeCount    int64  `json:"like_count"`
			CommentCount int64  `json:"comment_count"`
			ShareCount   int64  `json:"share_count"`
			ViewCount    int64  `json:"view_count"`
		} `json:"videos"`
	} `json:"data"`
	Error tiktokEnvelopeError `json:"error"`
}

// FetchRecentPosts lists the latest videos and then queries their counters in one batch.
func (a *TikTokAdapter) FetchRecentPosts(ctx context.Context, accessToken string) ([]channel.RawPost, error) {
	listURL := a.apiBase + "/v2/video/list/?fields=id,title,create_time,cover_image_url,duration,share_url"

	var list tiktokVideoList
	if err := a.api.postJSON(ctx, "posts", listURL, accessToken, map[string]int{"max_count": tiktokPostLimit}, &list); err != nil {
		return nil, err
	}
	if list.Error.failed() {
		return nil, channel.NewTransientError(channel.ProviderTikTok, "posts", 0, fmt.Errorf("%s: %s", list.Error.Code, list.Error.Message))
	}
	if len(list.Data.Videos) == 0 {
		return nil, nil
	}

	posts := make([]channel.RawPost, 0, len(list.Data.Videos))
	index := make(map[string]int, len(list.Data.Videos))
	ids := make([]string, 0, len(list.Data.Videos))
	for _, v := range list.Data.Videos {
		post := channel.RawPost{
			ProviderPostID: v.ID,
			Title:          v.Title,
			PostURL:        v.ShareURL,
			ThumbnailURL:   v.CoverImageURL,
		}
		if v.Duration > 0 {
			d := v.Duration
			post.DurationSeconds = &d
		}
		if v.CreateTime > 0 {
			t := time.Unix(v.CreateTime, 0).UTC()
			post.PublishedAt = &t
		}
		index[v.ID] = len(posts)
		ids = append(ids, v.ID)
		posts = append(posts, post)
	}

	queryURL := a.apiBase + "/v2/video/query/?fields=id,like_count,comment_count,share_count,view_count"
	body := map[string]any{"filters": map[string][]string{"video_ids": ids}}

	var stats tiktokVideoQuery
	if err := a.api.postJSON(ctx, "post_stats", queryURL, accessToken, body, &stats); err != nil {
		// posts without counters are still worth storing
		return posts, nil
	}
	for _, s := range stats.Data.Videos {
		i, ok := index[s.ID]
		if !ok {
			continue
		}
		posts[i].Views = s.ViewCount
		posts[i].Likes = s.LikeCount
		posts[i].Comments = s.CommentCount
		posts[i].Shares = s.ShareCount
	}
	return posts, nil
}

func (a *TikTokAdapter) Revoke(ctx context.Context, accessToken string) error {
	form := url.Values{}
	form.Set("client_key", a.clientKey)
	form.Set("client_secret", a.clientSecret)
	form.Set("token", accessToken)

	resp, err := a.api.postForm(ctx, "revoke", a.apiBase+"/v2/oauth/revoke/", form, "", "")
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("tiktok revoke failed: status %d: %s", resp.StatusCode, truncate(strings.TrimSpace(string(resp.Body)), 512))
	}
	return nil
}
