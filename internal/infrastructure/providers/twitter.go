package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/orris-inc/channelsync/internal/domain/channel"
	"github.com/orris-inc/channelsync/internal/shared/config"
)

const (
	twitterAuthorizeURL = "https://twitter.com/i/oauth2/authorize"
	twitterAPIBase      = "https://api.twitter.com"

	twitterDefaultExpiry = 7200 * time.Second
)

var twitterScopes = []string{"tweet.read", "users.read", "offline.access"}

// TwitterAdapter speaks the X (Twitter) OAuth2 PKCE flow. The granted scopes do
// not expose post metrics, so FetchRecentPosts returns nothing.
type TwitterAdapter struct {
	clientID     string
	clientSecret string
	apiBase      string
	flow         *oauth2Flow
	api          *apiClient
}

func NewTwitterAdapter(creds config.ProviderCredentials, redirectURL string, httpClient *http.Client) *TwitterAdapter {
	cfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       twitterScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   twitterAuthorizeURL,
			TokenURL:  twitterAPIBase + "/2/oauth2/token",
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
	return &TwitterAdapter{
		clientID:     creds.ClientID,
		clientSecret: creds.ClientSecret,
		apiBase:      twitterAPIBase,
		flow: &oauth2Flow{
			provider:      channel.ProviderTwitter,
			config:        cfg,
			httpClient:    httpClient,
			defaultExpiry: twitterDefaultExpiry,
		},
		api: &apiClient{provider: channel.ProviderTwitter, http: httpClient},
	}
}

func (a *TwitterAdapter) Provider() channel.Provider {
	return channel.ProviderTwitter
}

func (a *TwitterAdapter) AuthorizationURL(state, codeChallenge string) string {
	var opts []oauth2.AuthCodeOption
	if codeChallenge != "" {
		opts = append(opts,
			oauth2.SetAuthURLParam("code_challenge", codeChallenge),
			oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		)
	}
	return a.flow.config.AuthCodeURL(state, opts...)
}

func (a *TwitterAdapter) ExchangeCode(ctx context.Context, code, codeVerifier string) (*channel.TokenGrant, error) {
	opts := []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("client_id", a.clientID)}
	if codeVerifier != "" {
		opts = append(opts, oauth2.VerifierOption(codeVerifier))
	}
	return a.flow.exchange(ctx, code, opts...)
}

// Refresh exchanges a refresh token. X rotates refresh tokens, so the grant
// carries a new one on success.
func (a *TwitterAdapter) Refresh(ctx context.Context, refreshToken string) (*channel.TokenGrant, error) {
	return a.flow.refresh(ctx, refreshToken)
}

type twitterMe struct {
	Data struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Username      string `json:"username"`
		PublicMetrics struct {
			FollowersCount *int64 `json:"followers_count"`
		} `json:"public_metrics"`
	} `json:"data"`
}

func (a *TwitterAdapter) FetchIdentity(ctx context.Context, accessToken string) (*channel.Identity, error) {
	var me twitterMe
	if err := a.api.getJSON(ctx, "identity", a.apiBase+"/2/users/me?user.fields=public_metrics", accessToken, &me); err != nil {
		return nil, err
	}

	identity := &channel.Identity{
		AccountID:     me.Data.ID,
		DisplayName:   me.Data.Name,
		FollowerCount: me.Data.PublicMetrics.FollowersCount,
	}
	if me.Data.Username != "" {
		identity.DisplayName = "@" + me.Data.Username
		identity.ProfileURL = "https://x.com/" + me.Data.Username
	}
	return identity, nil
}

func (a *TwitterAdapter) FetchFollowerCount(ctx context.Context, accessToken string) (int64, error) {
	identity, err := a.FetchIdentity(ctx, accessToken)
	if err != nil {
		return 0, err
	}
	if identity.FollowerCount == nil {
		return 0, nil
	}
	return *identity.FollowerCount, nil
}

func (a *TwitterAdapter) FetchRecentPosts(context.Context, string) ([]channel.RawPost, error) {
	return []channel.RawPost{}, nil
}

func (a *TwitterAdapter) Revoke(ctx context.Context, accessToken string) error {
	form := url.Values{}
	form.Set("token", accessToken)
	form.Set("token_type_hint", "access_token")
	form.Set("client_id", a.clientID)

	resp, err := a.api.postForm(ctx, "revoke", a.apiBase+"/2/oauth2/revoke", form, a.clientID, a.clientSecret)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("twitter revoke failed: status %d: %s", resp.StatusCode, truncate(string(resp.Body), 512))
	}
	return nil
}
