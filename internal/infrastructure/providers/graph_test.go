package providers

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/channelsync/internal/domain/channel"
)

func newTestInstagram(t *testing.T, h http.HandlerFunc) *InstagramAdapter {
	t.Helper()
	srv := newTestServer(t, h)
	a := NewInstagramAdapter(testCreds, testRedirect, NewHTTPClient(time.Second))
	a.apiBase = srv.URL + "/api"
	a.graphBase = srv.URL + "/graph"
	return a
}

func newTestFacebook(t *testing.T, h http.HandlerFunc) *FacebookAdapter {
	t.Helper()
	srv := newTestServer(t, h)
	a := NewFacebookAdapter(testCreds, testRedirect, NewHTTPClient(time.Second))
	a.graphBase = srv.URL
	return a
}

func TestGraph_AuthorizationURL(t *testing.T) {
	for _, a := range []channel.ProviderAdapter{
		NewInstagramAdapter(testCreds, testRedirect, nil),
		NewFacebookAdapter(testCreds, testRedirect, nil),
	} {
		t.Run(a.Provider().String(), func(t *testing.T) {
			u, err := url.Parse(a.AuthorizationURL("st", "ignored"))
			require.NoError(t, err)
			assert.Equal(t, "www.facebook.com", u.Host)
			assert.Equal(t, "/v21.0/dialog/oauth", u.Path)
			assert.Equal(t, "client-id", u.Query().Get("client_id"))
			assert.Equal(t, "st", u.Query().Get("state"))
			assert.Empty(t, u.Query().Get("code_challenge"))
		})
	}
}

func TestGraph_RefreshIsPermanent(t *testing.T) {
	for _, a := range []channel.ProviderAdapter{
		NewInstagramAdapter(testCreds, testRedirect, nil),
		NewFacebookAdapter(testCreds, testRedirect, nil),
	} {
		_, err := a.Refresh(context.Background(), "anything")
		assert.True(t, channel.IsPermanent(err), a.Provider().String())
		assert.NoError(t, a.Revoke(context.Background(), "at"))
	}
}

func TestInstagram_ExchangeCodeUpgradesToken(t *testing.T) {
	a := newTestInstagram(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/oauth/access_token":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
			writeJSON(w, http.StatusOK, map[string]any{"access_token": "short", "user_id": 17841400000000000})
		case "/graph/access_token":
			q := r.URL.Query()
			assert.Equal(t, "ig_exchange_token", q.Get("grant_type"))
			assert.Equal(t, "short", q.Get("access_token"))
			writeJSON(w, http.StatusOK, map[string]any{"access_token": "long", "token_type": "bearer", "expires_in": 5184000})
		default:
			http.NotFound(w, r)
		}
	})

	grant, err := a.ExchangeCode(context.Background(), "code", "")
	require.NoError(t, err)
	assert.Equal(t, "long", grant.AccessToken)
	assert.Empty(t, grant.RefreshToken)
	assert.Equal(t, "17841400000000000", grant.AccountID)
	assert.WithinDuration(t, time.Now().Add(60*24*time.Hour), *grant.ExpiresAt, 5*time.Second)
}

func TestInstagram_ExchangeCodeKeepsShortLivedToken(t *testing.T) {
	a := newTestInstagram(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/oauth/access_token" {
			writeJSON(w, http.StatusOK, map[string]any{"access_token": "short", "user_id": "42"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]any{"message": "nope"}})
	})

	grant, err := a.ExchangeCode(context.Background(), "code", "")
	require.NoError(t, err)
	assert.Equal(t, "short", grant.AccessToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *grant.ExpiresAt, 5*time.Second)
}

func TestInstagram_ExchangeCodeRejected(t *testing.T) {
	a := newTestInstagram(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error_type": "OAuthException", "error_message": "Invalid code"})
	})

	_, err := a.ExchangeCode(context.Background(), "code", "")
	require.ErrorIs(t, err, channel.ErrTokenExchangeFailed)
	assert.Contains(t, err.Error(), "Invalid code")
}

func TestInstagram_IdentityAndPosts(t *testing.T) {
	a := newTestInstagram(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "at", r.URL.Query().Get("access_token"))
		switch r.URL.Path {
		case "/graph/me":
			writeJSON(w, http.StatusOK, map[string]any{"id": "ig1", "username": "brand", "followers_count": 900})
		case "/graph/me/media":
			writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{
				{"id": "m1", "caption": "hello", "timestamp": "2026-01-05T12:00:00+0000", "media_url": "https://cdn/m1.jpg", "permalink": "https://instagram.com/p/m1"},
			}})
		case "/graph/m1":
			writeJSON(w, http.StatusOK, map[string]any{"like_count": 12, "comments_count": 3})
		default:
			http.NotFound(w, r)
		}
	})

	id, err := a.FetchIdentity(context.Background(), "at")
	require.NoError(t, err)
	assert.Equal(t, "ig1", id.AccountID)
	assert.Equal(t, "@brand", id.DisplayName)
	assert.Equal(t, "https://www.instagram.com/brand", id.ProfileURL)
	assert.Equal(t, int64(900), *id.FollowerCount)

	posts, err := a.FetchRecentPosts(context.Background(), "at")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "https://cdn/m1.jpg", posts[0].ThumbnailURL)
	assert.Equal(t, time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC), *posts[0].PublishedAt)
	assert.Equal(t, int64(12), posts[0].Likes)
	assert.Equal(t, int64(3), posts[0].Comments)
}

func TestFacebook_ExchangeCode(t *testing.T) {
	a := newTestFacebook(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/oauth/access_token", r.URL.Path)
		assert.Equal(t, "code-1", r.URL.Query().Get("code"))
		assert.Equal(t, "client-secret", r.URL.Query().Get("client_secret"))
		writeJSON(w, http.StatusOK, map[string]any{"access_token": "fb-at", "token_type": "bearer"})
	})

	grant, err := a.ExchangeCode(context.Background(), "code-1", "")
	require.NoError(t, err)
	assert.Equal(t, "fb-at", grant.AccessToken)
	assert.WithinDuration(t, time.Now().Add(60*24*time.Hour), *grant.ExpiresAt, 5*time.Second)
}

func TestFacebook_IdentityUsesFirstPageFans(t *testing.T) {
	a := newTestFacebook(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/me":
			writeJSON(w, http.StatusOK, map[string]any{"id": "u1", "name": "Jane"})
		case "/me/accounts":
			assert.Equal(t, "fan_count", r.URL.Query().Get("fields"))
			writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{{"id": "p1", "fan_count": 321}, {"id": "p2", "fan_count": 5}}})
		default:
			http.NotFound(w, r)
		}
	})

	id, err := a.FetchIdentity(context.Background(), "at")
	require.NoError(t, err)
	assert.Equal(t, "u1", id.AccountID)
	assert.Equal(t, "Jane", id.DisplayName)
	require.NotNil(t, id.FollowerCount)
	assert.Equal(t, int64(321), *id.FollowerCount)
}

func TestFacebook_FollowerCountWithoutPages(t *testing.T) {
	a := newTestFacebook(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}})
	})

	n, err := a.FetchFollowerCount(context.Background(), "at")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFacebook_FetchRecentPostsUsesPageToken(t *testing.T) {
	a := newTestFacebook(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch r.URL.Path {
		case "/me/accounts":
			assert.Equal(t, "user-at", q.Get("access_token"))
			writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{{"id": "page1", "access_token": "page-at"}}})
		case "/page1/posts":
			assert.Equal(t, "page-at", q.Get("access_token"))
			writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{
				{"id": "page1_1", "message": "news", "created_time": "2026-01-02T08:30:00+0000", "permalink_url": "https://fb.com/1", "full_picture": "https://cdn/1.jpg"},
			}})
		case "/page1_1":
			assert.Equal(t, "page-at", q.Get("access_token"))
			writeJSON(w, http.StatusOK, map[string]any{
				"likes":    map[string]any{"data": []any{}, "summary": map[string]any{"total_count": 40}},
				"comments": map[string]any{"data": []any{}, "summary": map[string]any{"total_count": 4}},
				"shares":   map[string]any{"count": 2},
			})
		default:
			http.NotFound(w, r)
		}
	})

	posts, err := a.FetchRecentPosts(context.Background(), "user-at")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "page1_1", posts[0].ProviderPostID)
	assert.Equal(t, "news", posts[0].Title)
	assert.Equal(t, int64(40), posts[0].Likes)
	assert.Equal(t, int64(4), posts[0].Comments)
	assert.Equal(t, int64(2), posts[0].Shares)
}
