package channel

import (
	"fmt"
	"time"

	"github.com/orris-inc/channelsync/internal/shared/biztime"
)

// Channel is a social account linked to a project. The triple
// (projectID, provider, accountID) is unique.
type Channel struct {
	id             uint
	projectID      uint
	provider       Provider
	accountID      string
	name           string
	profileURL     string
	accessToken    string
	refreshToken   string
	tokenExpiresAt *time.Time
	followerCount  *int64
	active         bool
	lastSyncedAt   *time.Time
	createdAt      time.Time
	updatedAt      time.Time
}

// NewChannel creates an active channel from a successful authorization.
func NewChannel(projectID uint, provider Provider, accountID string, grant *TokenGrant, identity *Identity) (*Channel, error) {
	if projectID == 0 {
		return nil, fmt.Errorf("project ID is required")
	}
	if !provider.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
	if accountID == "" {
		return nil, fmt.Errorf("account ID is required")
	}
	if grant == nil || grant.AccessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}

	now := biztime.NowUTC()
	c := &Channel{
		projectID: projectID,
		provider:  provider,
		accountID: accountID,
		active:    true,
		createdAt: now,
		updatedAt: now,
	}
	c.applyGrant(grant, true)
	c.applyIdentity(identity)
	return c, nil
}

// ReconstructChannel rebuilds a channel from storage.
func ReconstructChannel(
	id uint,
	projectID uint,
	provider Provider,
	accountID string,
	name string,
	profileURL string,
	accessToken string,
	refreshToken string,
	tokenExpiresAt *time.Time,
	followerCount *int64,
	active bool,
	lastSyncedAt *time.Time,
	createdAt, updatedAt time.Time,
) (*Channel, error) {
	if id == 0 {
		return nil, fmt.Errorf("channel ID cannot be zero")
	}
	if !provider.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}

	return &Channel{
		id:             id,
		projectID:      projectID,
		provider:       provider,
		accountID:      accountID,
		name:           name,
		profileURL:     profileURL,
		accessToken:    accessToken,
		refreshToken:   refreshToken,
		tokenExpiresAt: tokenExpiresAt,
		followerCount:  followerCount,
		active:         active,
		lastSyncedAt:   lastSyncedAt,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}, nil
}

func (c *Channel) ID() uint                   { return c.id }
func (c *Channel) ProjectID() uint            { return c.projectID }
func (c *Channel) Provider() Provider         { return c.provider }
func (c *Channel) AccountID() string          { return c.accountID }
func (c *Channel) Name() string               { return c.name }
func (c *Channel) ProfileURL() string         { return c.profileURL }
func (c *Channel) AccessToken() string        { return c.accessToken }
func (c *Channel) RefreshToken() string       { return c.refreshToken }
func (c *Channel) TokenExpiresAt() *time.Time { return c.tokenExpiresAt }
func (c *Channel) FollowerCount() *int64      { return c.followerCount }
func (c *Channel) IsActive() bool             { return c.active }
func (c *Channel) LastSyncedAt() *time.Time   { return c.lastSyncedAt }
func (c *Channel) CreatedAt() time.Time       { return c.createdAt }
func (c *Channel) UpdatedAt() time.Time       { return c.updatedAt }

func (c *Channel) SetID(id uint) error {
	if c.id != 0 {
		return fmt.Errorf("channel ID already set")
	}
	if id == 0 {
		return fmt.Errorf("channel ID cannot be zero")
	}
	c.id = id
	return nil
}

func (c *Channel) HasRefreshToken() bool {
	return c.refreshToken != ""
}

// IsTokenExpired reports whether the access token expired before now.
// A channel without an expiry never expires.
func (c *Channel) IsTokenExpired(now time.Time) bool {
	return c.tokenExpiresAt != nil && now.After(*c.tokenExpiresAt)
}

// ExpiredWithin reports whether the token expired no longer than grace ago.
func (c *Channel) ExpiredWithin(now time.Time, grace time.Duration) bool {
	if !c.IsTokenExpired(now) || grace <= 0 {
		return false
	}
	return now.Sub(*c.tokenExpiresAt) <= grace
}

// Reauthorize overwrites credentials and profile after a new authorization of
// the same account and marks the channel active again.
func (c *Channel) Reauthorize(grant *TokenGrant, identity *Identity) error {
	if grant == nil || grant.AccessToken == "" {
		return fmt.Errorf("access token is required")
	}
	c.applyGrant(grant, true)
	c.applyIdentity(identity)
	c.active = true
	c.updatedAt = biztime.NowUTC()
	return nil
}

// ApplyRefresh stores a refreshed token. The refresh token is only replaced
// when the provider rotated it.
func (c *Channel) ApplyRefresh(grant *TokenGrant) error {
	if grant == nil || grant.AccessToken == "" {
		return fmt.Errorf("access token is required")
	}
	c.applyGrant(grant, false)
	c.updatedAt = biztime.NowUTC()
	return nil
}

// Deactivate marks the grant as dead. Only a new authorization revives the channel.
func (c *Channel) Deactivate() {
	c.active = false
	c.updatedAt = biztime.NowUTC()
}

// RecordSync caches the latest follower count.
func (c *Channel) RecordSync(followers int64, at time.Time) {
	c.followerCount = &followers
	c.lastSyncedAt = &at
	c.updatedAt = biztime.NowUTC()
}

func (c *Channel) applyGrant(grant *TokenGrant, replaceRefresh bool) {
	c.accessToken = grant.AccessToken
	if replaceRefresh || grant.RefreshToken != "" {
		c.refreshToken = grant.RefreshToken
	}
	c.tokenExpiresAt = biztime.ToUTC(grant.ExpiresAt)
}

func (c *Channel) applyIdentity(identity *Identity) {
	if identity == nil {
		return
	}
	if identity.DisplayName != "" {
		c.name = identity.DisplayName
	}
	if identity.ProfileURL != "" {
		c.profileURL = identity.ProfileURL
	}
	if identity.FollowerCount != nil {
		count := *identity.FollowerCount
		c.followerCount = &count
	}
}
