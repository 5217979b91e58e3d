package channel

import "context"

type Repository interface {
	Create(ctx context.Context, ch *Channel) error
	Update(ctx context.Context, ch *Channel) error
	// UpdateTokens stores refreshed credentials only while the row still holds
	// previousAccessToken. It reports false when a newer grant replaced it.
	UpdateTokens(ctx context.Context, ch *Channel, previousAccessToken string) (bool, error)
	// DeactivateGrant marks the channel inactive only while the row still holds
	// accessToken. It reports false when a newer grant replaced it.
	DeactivateGrant(ctx context.Context, ch *Channel, accessToken string) (bool, error)
	// UpdateSyncStats writes the follower count and last sync time and nothing else.
	UpdateSyncStats(ctx context.Context, ch *Channel) error
	GetByID(ctx context.Context, id uint) (*Channel, error)
	// FindByAccount returns nil, nil when no channel matches.
	FindByAccount(ctx context.Context, projectID uint, provider Provider, accountID string) (*Channel, error)
	// LockByAccount reads the latest committed row with a row lock. Use it to
	// pick up a row a concurrent transaction just inserted.
	LockByAccount(ctx context.Context, projectID uint, provider Provider, accountID string) (*Channel, error)
	ListActive(ctx context.Context) ([]*Channel, error)
	ListByProject(ctx context.Context, projectID uint) ([]*Channel, error)
	// Delete removes the channel together with its snapshots and posts.
	Delete(ctx context.Context, id uint) error
}

type StatsRepository interface {
	Append(ctx context.Context, snapshot *StatsSnapshot) error
	ListByChannel(ctx context.Context, channelID uint, limit int) ([]*StatsSnapshot, error)
}

type PostRepository interface {
	// FindByProviderPostID returns nil, nil when the post is not stored yet.
	FindByProviderPostID(ctx context.Context, channelID uint, providerPostID string) (*Post, error)
	Save(ctx context.Context, post *Post) error
	AppendStats(ctx context.Context, stats *PostStats) error
	ListByChannel(ctx context.Context, channelID uint, limit int) ([]*Post, error)
}
