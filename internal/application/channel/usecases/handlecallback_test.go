package usecases

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/orris-inc/channelsync/internal/domain/channel"
	"github.com/orris-inc/channelsync/internal/shared/db"
	"github.com/orris-inc/channelsync/internal/shared/logger"
)

type callbackFixture struct {
	channels  *memChannelRepository
	stats     *memStatsRepository
	adapter   *mockAdapter
	verifiers VerifierStore
	trigger   *mockSyncTrigger
	codec     StateCodec
	tx        TransactionRunner
}

func newCallbackFixture(provider channel.Provider) *callbackFixture {
	return &callbackFixture{
		channels:  newMemChannelRepository(),
		stats:     &memStatsRepository{},
		adapter:   newMockAdapter(provider),
		verifiers: newMapVerifierStore(),
		trigger:   new(mockSyncTrigger),
		codec:     fakeStateCodec{},
		tx:        directTx{},
	}
}

func (f *callbackFixture) useCase() *HandleCallbackUseCase {
	return NewHandleCallbackUseCase(
		newStaticProjects(map[uint]string{1: "user-1"}),
		f.channels,
		f.stats,
		newMapRegistry(f.adapter),
		f.codec,
		f.verifiers,
		f.tx,
		f.trigger,
		logger.NewNop(),
	)
}

func grantFor(access, refresh string) *channel.TokenGrant {
	expires := time.Now().Add(time.Hour).UTC()
	return &channel.TokenGrant{AccessToken: access, RefreshToken: refresh, ExpiresAt: &expires}
}

func TestHandleCallback_CreatesChannelWithOneSnapshot(t *testing.T) {
	f := newCallbackFixture(channel.ProviderYouTube)
	f.adapter.On("ExchangeCode", mock.Anything, "code-1", "").Return(grantFor("at-1", "rt-1"), nil)
	f.adapter.On("FetchIdentity", mock.Anything, "at-1").Return(&channel.Identity{
		AccountID:     "UC123",
		DisplayName:   "Cooking Daily",
		ProfileURL:    "https://youtube.com/channel/UC123",
		FollowerCount: int64Ptr(1500),
	}, nil)
	f.trigger.On("TriggerSync", uint(1)).Return()

	result, err := f.useCase().Execute(context.Background(), HandleCallbackCommand{
		Provider: channel.ProviderYouTube,
		Code:     "code-1",
		State:    "state-user-1",
	})

	require.NoError(t, err)
	assert.Equal(t, uint(1), result.ProjectID)
	assert.Equal(t, uint(1), result.ChannelID)
	assert.False(t, result.Reauthorized)

	ch := f.channels.get(result.ChannelID)
	require.NotNil(t, ch)
	assert.True(t, ch.IsActive())
	assert.Equal(t, "UC123", ch.AccountID())
	assert.Equal(t, "Cooking Daily", ch.Name())
	assert.Equal(t, "at-1", ch.AccessToken())
	assert.Equal(t, "rt-1", ch.RefreshToken())
	require.NotNil(t, ch.FollowerCount())
	assert.Equal(t, int64(1500), *ch.FollowerCount())

	snapshots := f.stats.forChannel(result.ChannelID)
	require.Len(t, snapshots, 1)
	assert.Equal(t, int64(1500), snapshots[0].FollowersCount)
	f.trigger.AssertExpectations(t)
}

func TestHandleCallback_NoSnapshotWithoutFollowers(t *testing.T) {
	tests := []struct {
		name      string
		followers *int64
	}{
		{name: "unknown count", followers: nil},
		{name: "zero followers", followers: int64Ptr(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCallbackFixture(channel.ProviderYouTube)
			f.adapter.On("ExchangeCode", mock.Anything, "code", "").Return(grantFor("at", "rt"), nil)
			f.adapter.On("FetchIdentity", mock.Anything, "at").Return(&channel.Identity{
				AccountID:     "UC1",
				DisplayName:   "New Channel",
				FollowerCount: tt.followers,
			}, nil)
			f.trigger.On("TriggerSync", mock.Anything).Return()

			result, err := f.useCase().Execute(context.Background(), HandleCallbackCommand{
				Provider: channel.ProviderYouTube,
				Code:     "code",
				State:    "state-user-1",
			})

			require.NoError(t, err)
			assert.Empty(t, f.stats.forChannel(result.ChannelID))
		})
	}
}

func TestHandleCallback_ReauthorizationKeepsChannelID(t *testing.T) {
	f := newCallbackFixture(channel.ProviderTikTok)
	past := time.Now().Add(-48 * time.Hour).UTC()
	existing := f.channels.seed(1, channel.ProviderTikTok, "open-id-1", "old-at", "old-rt", &past)
	existing.Deactivate()
	require.NoError(t, f.channels.Update(context.Background(), existing))

	f.adapter.On("ExchangeCode", mock.Anything, "code-2", "").Return(grantFor("new-at", "new-rt"), nil)
	f.adapter.On("FetchIdentity", mock.Anything, "new-at").Return(&channel.Identity{
		AccountID:   "open-id-1",
		DisplayName: "Dance Crew",
	}, nil)
	f.trigger.On("TriggerSync", existing.ID()).Return()

	result, err := f.useCase().Execute(context.Background(), HandleCallbackCommand{
		Provider: channel.ProviderTikTok,
		Code:     "code-2",
		State:    "state-user-1",
	})

	require.NoError(t, err)
	assert.True(t, result.Reauthorized)
	assert.Equal(t, existing.ID(), result.ChannelID)
	assert.Equal(t, 1, f.channels.count())

	ch := f.channels.get(existing.ID())
	assert.True(t, ch.IsActive())
	assert.Equal(t, "new-at", ch.AccessToken())
	assert.Equal(t, "new-rt", ch.RefreshToken())
	assert.Equal(t, "Dance Crew", ch.Name())
	require.NotNil(t, ch.TokenExpiresAt())
	assert.True(t, ch.TokenExpiresAt().After(time.Now()))
	f.trigger.AssertExpectations(t)
}

func TestHandleCallback_PassesVerifierOnce(t *testing.T) {
	f := newCallbackFixture(channel.ProviderTwitter)
	require.NoError(t, f.verifiers.Store(context.Background(), "state-user-1", "verifier-abc"))

	f.adapter.On("ExchangeCode", mock.Anything, "code-1", "verifier-abc").Return(grantFor("at-1", "rt-1"), nil).Once()
	f.adapter.On("ExchangeCode", mock.Anything, "code-1", "").
		Return(nil, &channel.TokenExchangeError{Provider: channel.ProviderTwitter, StatusCode: 400, Raw: `{"error":"invalid_request"}`}).Once()
	f.adapter.On("FetchIdentity", mock.Anything, "at-1").Return(&channel.Identity{AccountID: "42", DisplayName: "@someone"}, nil)
	f.trigger.On("TriggerSync", mock.Anything).Return()

	uc := f.useCase()
	cmd := HandleCallbackCommand{Provider: channel.ProviderTwitter, Code: "code-1", State: "state-user-1"}

	_, err := uc.Execute(context.Background(), cmd)
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, channel.ErrTokenExchangeFailed)
	f.adapter.AssertExpectations(t)
}

func TestHandleCallback_VerifierStoreErrorStillExchanges(t *testing.T) {
	f := newCallbackFixture(channel.ProviderTikTok)
	verifiers := new(mockVerifierStore)
	verifiers.On("Take", mock.Anything, "state-user-1").Return("", false, errors.New("connection refused"))
	f.verifiers = verifiers

	f.adapter.On("ExchangeCode", mock.Anything, "code", "").Return(grantFor("at", ""), nil)
	f.adapter.On("FetchIdentity", mock.Anything, "at").Return(&channel.Identity{AccountID: "oid"}, nil)
	f.trigger.On("TriggerSync", mock.Anything).Return()

	_, err := f.useCase().Execute(context.Background(), HandleCallbackCommand{
		Provider: channel.ProviderTikTok,
		Code:     "code",
		State:    "state-user-1",
	})

	require.NoError(t, err)
	f.adapter.AssertExpectations(t)
}

func TestHandleCallback_InvalidState(t *testing.T) {
	f := newCallbackFixture(channel.ProviderTikTok)
	f.codec = fakeStateCodec{err: channel.ErrInvalidState}

	result, err := f.useCase().Execute(context.Background(), HandleCallbackCommand{
		Provider: channel.ProviderTikTok,
		Code:     "code",
		State:    "forged",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, channel.ErrInvalidState)
	f.adapter.AssertNotCalled(t, "ExchangeCode", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 0, f.channels.count())
}

func TestHandleCallback_ExchangeFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{
			name: "provider rejected the code",
			err:  &channel.TokenExchangeError{Provider: channel.ProviderTikTok, StatusCode: 200, Raw: `{"error":"invalid_grant"}`},
		},
		{
			name: "network failure",
			err:  channel.NewTransientError(channel.ProviderTikTok, "exchange", 0, errors.New("dial tcp: timeout")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCallbackFixture(channel.ProviderTikTok)
			f.adapter.On("ExchangeCode", mock.Anything, "code", "").Return(nil, tt.err)

			result, err := f.useCase().Execute(context.Background(), HandleCallbackCommand{
				Provider: channel.ProviderTikTok,
				Code:     "code",
				State:    "state-user-1",
			})

			assert.Nil(t, result)
			assert.ErrorIs(t, err, channel.ErrTokenExchangeFailed)
			assert.Equal(t, 0, f.channels.count())
			f.trigger.AssertNotCalled(t, "TriggerSync", mock.Anything)
		})
	}
}

func TestHandleCallback_IdentityFailureUsesPlaceholder(t *testing.T) {
	f := newCallbackFixture(channel.ProviderTikTok)
	grant := grantFor("at", "rt")
	grant.AccountID = "open-id-from-token"
	f.adapter.On("ExchangeCode", mock.Anything, "code", "").Return(grant, nil)
	f.adapter.On("FetchIdentity", mock.Anything, "at").Return(nil, errors.New("scope not granted"))
	f.trigger.On("TriggerSync", mock.Anything).Return()

	result, err := f.useCase().Execute(context.Background(), HandleCallbackCommand{
		Provider: channel.ProviderTikTok,
		Code:     "code",
		State:    "state-user-1",
	})

	require.NoError(t, err)
	ch := f.channels.get(result.ChannelID)
	assert.Equal(t, "open-id-from-token", ch.AccountID())
	assert.Equal(t, "Unknown", ch.Name())
	assert.Empty(t, f.stats.forChannel(result.ChannelID))
}

func TestHandleCallback_UnknownAccountFallback(t *testing.T) {
	f := newCallbackFixture(channel.ProviderFacebook)
	f.adapter.On("ExchangeCode", mock.Anything, "code", "").Return(grantFor("at", ""), nil)
	f.adapter.On("FetchIdentity", mock.Anything, "at").Return(nil, errors.New("no pages"))
	f.trigger.On("TriggerSync", mock.Anything).Return()

	result, err := f.useCase().Execute(context.Background(), HandleCallbackCommand{
		Provider: channel.ProviderFacebook,
		Code:     "code",
		State:    "state-user-1",
	})

	require.NoError(t, err)
	assert.Equal(t, channel.UnknownAccountID, f.channels.get(result.ChannelID).AccountID())
}

func newSQLiteTxManager(t *testing.T) *db.TransactionManager {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db.NewTransactionManager(gdb)
}

// recordingTx notes when the transaction body has finished.
type recordingTx struct {
	inner  TransactionRunner
	mu     sync.Mutex
	events []string
}

func (r *recordingTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.inner.RunInTransaction(ctx, func(txCtx context.Context) error {
		err := fn(txCtx)
		r.record("body-done")
		return err
	})
}

func (r *recordingTx) record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func TestHandleCallback_TriggersSyncAfterCommit(t *testing.T) {
	f := newCallbackFixture(channel.ProviderYouTube)
	tx := &recordingTx{inner: newSQLiteTxManager(t)}
	f.tx = tx

	f.adapter.On("ExchangeCode", mock.Anything, "code", "").Return(grantFor("at", "rt"), nil)
	f.adapter.On("FetchIdentity", mock.Anything, "at").Return(&channel.Identity{AccountID: "UC9", FollowerCount: int64Ptr(10)}, nil)
	f.trigger.On("TriggerSync", uint(1)).Run(func(mock.Arguments) {
		tx.record("trigger")
	}).Return()

	_, err := f.useCase().Execute(context.Background(), HandleCallbackCommand{
		Provider: channel.ProviderYouTube,
		Code:     "code",
		State:    "state-user-1",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"body-done", "trigger"}, tx.events)
}

func TestHandleCallback_NoSyncWhenTransactionRollsBack(t *testing.T) {
	f := newCallbackFixture(channel.ProviderYouTube)
	f.tx = newSQLiteTxManager(t)
	f.stats.appendErr = errors.New("disk full")

	f.adapter.On("ExchangeCode", mock.Anything, "code", "").Return(grantFor("at", "rt"), nil)
	f.adapter.On("FetchIdentity", mock.Anything, "at").Return(&channel.Identity{AccountID: "UC9", FollowerCount: int64Ptr(10)}, nil)

	result, err := f.useCase().Execute(context.Background(), HandleCallbackCommand{
		Provider: channel.ProviderYouTube,
		Code:     "code",
		State:    "state-user-1",
	})

	assert.Nil(t, result)
	require.Error(t, err)
	f.trigger.AssertNotCalled(t, "TriggerSync", mock.Anything)
}

func TestHandleCallback_LostInsertRaceReauthorizesExistingRow(t *testing.T) {
	f := newCallbackFixture(channel.ProviderYouTube)
	winner := f.channels.seed(1, channel.ProviderYouTube, "UC9", "winner-at", "winner-rt", nil)
	f.channels.findMisses = 1

	f.adapter.On("ExchangeCode", mock.Anything, "code-9", "").Return(grantFor("loser-at", "loser-rt"), nil)
	f.adapter.On("FetchIdentity", mock.Anything, "loser-at").Return(&channel.Identity{
		AccountID:   "UC9",
		DisplayName: "Garden Tours",
	}, nil)
	f.trigger.On("TriggerSync", winner.ID()).Return()

	result, err := f.useCase().Execute(context.Background(), HandleCallbackCommand{
		Provider: channel.ProviderYouTube,
		Code:     "code-9",
		State:    "state-user-1",
	})

	require.NoError(t, err)
	assert.True(t, result.Reauthorized)
	assert.Equal(t, winner.ID(), result.ChannelID)
	assert.Equal(t, 1, f.channels.count())

	ch := f.channels.get(winner.ID())
	assert.Equal(t, "loser-at", ch.AccessToken())
	assert.Equal(t, "loser-rt", ch.RefreshToken())
	assert.Equal(t, "Garden Tours", ch.Name())
	f.trigger.AssertExpectations(t)
}

func TestHandleCallback_VerifierOnlyConsumedForPKCEProviders(t *testing.T) {
	tests := []struct {
		name         string
		provider     channel.Provider
		wantVerifier string
		wantKept     bool
	}{
		{name: "youtube leaves pending verifier", provider: channel.ProviderYouTube, wantVerifier: "", wantKept: true},
		{name: "instagram leaves pending verifier", provider: channel.ProviderInstagram, wantVerifier: "", wantKept: true},
		{name: "tiktok consumes verifier", provider: channel.ProviderTikTok, wantVerifier: "pending-verifier", wantKept: false},
		{name: "twitter consumes verifier", provider: channel.ProviderTwitter, wantVerifier: "pending-verifier", wantKept: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCallbackFixture(tt.provider)
			ctx := context.Background()
			require.NoError(t, f.verifiers.Store(ctx, "state-user-1", "pending-verifier"))

			f.adapter.On("ExchangeCode", mock.Anything, "code", tt.wantVerifier).Return(grantFor("at", "rt"), nil)
			f.adapter.On("FetchIdentity", mock.Anything, "at").Return(&channel.Identity{AccountID: "acct"}, nil)
			f.trigger.On("TriggerSync", mock.Anything).Return()

			_, err := f.useCase().Execute(ctx, HandleCallbackCommand{
				Provider: tt.provider,
				Code:     "code",
				State:    "state-user-1",
			})
			require.NoError(t, err)

			verifier, found, err := f.verifiers.Take(ctx, "state-user-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantKept, found)
			if tt.wantKept {
				assert.Equal(t, "pending-verifier", verifier)
			}
			f.adapter.AssertExpectations(t)
		})
	}
}
