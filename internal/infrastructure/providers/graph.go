package providers

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/orris-inc/channelsync/internal/domain/channel"
)

const (
	facebookDialogURL = "https://www.facebook.com/v21.0/dialog/oauth"

	// long-lived Graph tokens last 60 days and cannot be refreshed with a refresh token
	graphLongLivedExpiry = 5184000 * time.Second
	graphTimeLayout      = "2006-01-02T15:04:05-0700"
)

func graphAuthorizationURL(dialogURL, clientID, redirectURL, scopes, state string) string {
	q := url.Values{}
	q.Set("client_id", clientID)
	q.Set("redirect_uri", redirectURL)
	q.Set("response_type", "code")
	q.Set("scope", scopes)
	q.Set("state", state)
	return dialogURL + "?" + q.Encode()
}

// graphRefresh is the refresh step for Graph providers. They hand out
// long-lived tokens only, so an expired token needs a new authorization.
func graphRefresh(provider channel.Provider) error {
	return channel.NewPermanentError(provider, "refresh", "", errors.New("no refresh token present"))
}

// graphCount is the `{"summary":{"total_count":N}}` shape of edge summaries.
type graphCount struct {
	Summary struct {
		TotalCount int64 `json:"total_count"`
	} `json:"summary"`
}

func withQuery(base string, q url.Values) string {
	return base + "?" + q.Encode()
}

func noopRevoke(context.Context, string) error {
	return nil
}
