package channel

import (
	"context"
	"time"
)

// UnknownAccountID is stored when neither the identity call nor the token
// response names the provider account.
const UnknownAccountID = "unknown"

// TokenGrant is the result of a code exchange or a refresh.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
	// AccountID is set by providers that name the account in the token response.
	AccountID string
}

// Identity is the provider's view of the linked account.
type Identity struct {
	AccountID     string
	DisplayName   string
	ProfileURL    string
	FollowerCount *int64
}

// PlaceholderIdentity stands in for an identity the provider would not return.
func PlaceholderIdentity() *Identity {
	return &Identity{DisplayName: "Unknown"}
}

// ResolveAccountID prefers the identity's account id, then the token's, then UnknownAccountID.
func ResolveAccountID(identity *Identity, grant *TokenGrant) string {
	if identity != nil && identity.AccountID != "" && identity.AccountID != UnknownAccountID {
		return identity.AccountID
	}
	if grant != nil && grant.AccountID != "" {
		return grant.AccountID
	}
	return UnknownAccountID
}

// RawPost is one recent post as reported by a provider.
type RawPost struct {
	ProviderPostID  string
	Title           string
	Description     string
	PostURL         string
	ThumbnailURL    string
	DurationSeconds *int
	PublishedAt     *time.Time
	Views           int64
	Likes           int64
	Comments        int64
	Shares          int64
}

// ProviderAdapter speaks one platform's OAuth and metrics APIs.
//
// Refresh returns an error wrapping ErrPermanentGrant when the grant is dead and
// ErrTransientProvider for anything a retry may fix.
type ProviderAdapter interface {
	Provider() Provider
	AuthorizationURL(state, codeChallenge string) string
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*TokenGrant, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenGrant, error)
	FetchIdentity(ctx context.Context, accessToken string) (*Identity, error)
	FetchFollowerCount(ctx context.Context, accessToken string) (int64, error)
	FetchRecentPosts(ctx context.Context, accessToken string) ([]RawPost, error)
	Revoke(ctx context.Context, accessToken string) error
}

// AdapterRegistry resolves the adapter for a provider. It returns
// ErrProviderNotConfigured when the provider has no client credentials.
type AdapterRegistry interface {
	Adapter(provider Provider) (ProviderAdapter, error)
}
