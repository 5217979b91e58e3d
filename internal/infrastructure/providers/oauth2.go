package providers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/orris-inc/channelsync/internal/domain/channel"
	"github.com/orris-inc/channelsync/internal/shared/biztime"
)

// OAuth2 error codes that mean the grant or the client is gone for good.
var oauth2PermanentCodes = map[string]bool{
	"invalid_grant":  true,
	"invalid_client": true,
}

// oauth2Flow runs the code exchange and refresh of a standards-compliant
// OAuth2 provider through x/oauth2.
type oauth2Flow struct {
	provider      channel.Provider
	config        *oauth2.Config
	httpClient    *http.Client
	defaultExpiry time.Duration
}

func (f *oauth2Flow) context(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)
}

func (f *oauth2Flow) exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*channel.TokenGrant, error) {
	rec := &tokenResponseRecorder{}
	tok, err := f.config.Exchange(context.WithValue(ctx, oauth2.HTTPClient, rec.wrap(f.httpClient)), code, opts...)
	if err != nil {
		exErr := &channel.TokenExchangeError{Provider: f.provider, Raw: err.Error()}
		var re *oauth2.RetrieveError
		switch {
		case errors.As(err, &re):
			exErr.Raw = string(re.Body)
			if re.Response != nil {
				exErr.StatusCode = re.Response.StatusCode
			}
		case rec.status != 0:
			// x/oauth2 reports a 2xx body without access_token as a bare error.
			exErr.StatusCode = rec.status
			exErr.Raw = string(rec.body)
		}
		return nil, exErr
	}
	if tok.AccessToken == "" {
		return nil, &channel.TokenExchangeError{Provider: f.provider, StatusCode: rec.status, Raw: string(rec.body)}
	}
	return f.grant(tok), nil
}

// tokenResponseRecorder keeps the status and body of the token endpoint
// response for error reporting.
type tokenResponseRecorder struct {
	base   http.RoundTripper
	status int
	body   []byte
}

func (r *tokenResponseRecorder) wrap(client *http.Client) *http.Client {
	wrapped := &http.Client{}
	if client != nil {
		*wrapped = *client
	}
	r.base = wrapped.Transport
	if r.base == nil {
		r.base = http.DefaultTransport
	}
	wrapped.Transport = r
	return wrapped
}

func (r *tokenResponseRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := r.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	r.status = resp.StatusCode
	r.body = body
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

// refresh forces a refresh_token grant and classifies the failure.
func (f *oauth2Flow) refresh(ctx context.Context, refreshToken string) (*channel.TokenGrant, error) {
	if refreshToken == "" {
		return nil, channel.NewPermanentError(f.provider, "refresh", "", errors.New("no refresh token present"))
	}

	src := f.config.TokenSource(f.context(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, classifyOAuth2Error(f.provider, "refresh", err)
	}
	return f.grant(tok), nil
}

func (f *oauth2Flow) grant(tok *oauth2.Token) *channel.TokenGrant {
	g := &channel.TokenGrant{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if tok.Expiry.IsZero() {
		g.ExpiresAt = expiryFrom(biztime.NowUTC(), 0, f.defaultExpiry)
	} else {
		exp := tok.Expiry.UTC()
		g.ExpiresAt = &exp
	}
	return g
}

func classifyOAuth2Error(provider channel.Provider, op string, err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return channel.NewTransientError(provider, op, 0, err)
	}

	status := 0
	if re.Response != nil {
		status = re.Response.StatusCode
	}
	if oauth2PermanentCodes[re.ErrorCode] {
		return channel.NewPermanentError(provider, op, re.ErrorCode, err)
	}
	return channel.NewTransientError(provider, op, status, err)
}
