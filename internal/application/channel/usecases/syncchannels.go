package usecases

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/orris-inc/channelsync/internal/domain/channel"
	"github.com/orris-inc/channelsync/internal/shared/biztime"
	"github.com/orris-inc/channelsync/internal/shared/goroutine"
	"github.com/orris-inc/channelsync/internal/shared/logger"
)

const (
	defaultSyncConcurrency   = 4
	defaultConnectionTimeout = 2 * time.Minute
)

// SyncOutcome is the result of one channel's sync cycle. Skipped means there
// was nothing to sync or a newer grant replaced the one the cycle started with.
type SyncOutcome string

const (
	SyncOutcomeSynced      SyncOutcome = "synced"
	SyncOutcomeFailed      SyncOutcome = "failed"
	SyncOutcomeDeactivated SyncOutcome = "deactivated"
	SyncOutcomeSkipped     SyncOutcome = "skipped"
)

// SyncReport counts the outcomes of a SyncAll pass.
type SyncReport struct {
	Total       int
	Succeeded   int
	Failed      int
	Deactivated int
	Skipped     int
	StartedAt   time.Time
	FinishedAt  time.Time
}

type SyncOptions struct {
	// Concurrency bounds how many channels sync at the same time.
	Concurrency int
	// ConnectionTimeout bounds one channel's whole cycle.
	ConnectionTimeout time.Duration
	// ExpiryGrace keeps a channel without a refresh token active while its
	// token expired less than this long ago.
	ExpiryGrace time.Duration
}

type SyncChannelsUseCase struct {
	channels channel.Repository
	stats    channel.StatsRepository
	posts    channel.PostRepository
	registry channel.AdapterRegistry
	opts     SyncOptions
	now      func() time.Time
	logger   logger.Interface
}

func NewSyncChannelsUseCase(
	channels channel.Repository,
	stats channel.StatsRepository,
	posts channel.PostRepository,
	registry channel.AdapterRegistry,
	opts SyncOptions,
	logger logger.Interface,
) *SyncChannelsUseCase {
	if opts.Concurrency < 1 {
		opts.Concurrency = defaultSyncConcurrency
	}
	if opts.ConnectionTimeout <= 0 {
		opts.ConnectionTimeout = defaultConnectionTimeout
	}
	return &SyncChannelsUseCase{
		channels: channels,
		stats:    stats,
		posts:    posts,
		registry: registry,
		opts:     opts,
		now:      biztime.NowUTC,
		logger:   logger,
	}
}

// SyncAll syncs every active channel. One channel's failure never stops the
// others. The pass ignores cancellation of ctx and runs to completion; each
// channel is bounded by ConnectionTimeout instead.
func (uc *SyncChannelsUseCase) SyncAll(ctx context.Context) (*SyncReport, error) {
	ctx = context.WithoutCancel(ctx)
	report := &SyncReport{StartedAt: uc.now()}

	active, err := uc.channels.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active channels: %w", err)
	}
	report.Total = len(active)

	var succeeded, failed, deactivated, skipped atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(uc.opts.Concurrency)
	for _, ch := range active {
		g.Go(func() error {
			outcome := SyncOutcomeFailed
			goroutine.Run(uc.logger, "channel-sync", func() {
				outcome, _ = uc.SyncOne(ctx, ch)
			})

			switch outcome {
			case SyncOutcomeSynced:
				succeeded.Add(1)
			case SyncOutcomeDeactivated:
				deactivated.Add(1)
			case SyncOutcomeSkipped:
				skipped.Add(1)
			default:
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	report.Succeeded = int(succeeded.Load())
	report.Failed = int(failed.Load())
	report.Deactivated = int(deactivated.Load())
	report.Skipped = int(skipped.Load())
	report.FinishedAt = uc.now()

	uc.logger.Infow("channel sync finished",
		"total", report.Total,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"deactivated", report.Deactivated,
		"skipped", report.Skipped,
		"duration", report.FinishedAt.Sub(report.StartedAt).String(),
	)
	return report, nil
}

// SyncChannel syncs one channel by id. Inactive channels are skipped.
func (uc *SyncChannelsUseCase) SyncChannel(ctx context.Context, channelID uint) (SyncOutcome, error) {
	ch, err := uc.channels.GetByID(ctx, channelID)
	if err != nil {
		return SyncOutcomeFailed, fmt.Errorf("failed to load channel: %w", err)
	}
	if ch == nil || !ch.IsActive() {
		return SyncOutcomeSkipped, nil
	}
	return uc.SyncOne(ctx, ch)
}

// TriggerSync syncs a channel in the background. Failures are only logged.
func (uc *SyncChannelsUseCase) TriggerSync(channelID uint) {
	goroutine.SafeGo(uc.logger, "channel-sync-trigger", func() {
		outcome, err := uc.SyncChannel(context.Background(), channelID)
		if err != nil {
			uc.logger.Warnw("triggered sync failed", "channel_id", channelID, "outcome", outcome, "error", err)
		}
	})
}

// SyncOne refreshes an expired token, records the follower metric and then
// upserts recent posts. A permanent refresh failure deactivates the channel.
// Any other failure leaves it active for the next cycle.
func (uc *SyncChannelsUseCase) SyncOne(ctx context.Context, ch *channel.Channel) (SyncOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.opts.ConnectionTimeout)
	defer cancel()

	log := uc.logger.With("channel_id", ch.ID(), "provider", ch.Provider())

	adapter, err := uc.registry.Adapter(ch.Provider())
	if err != nil {
		log.Warnw("skipping channel sync, provider unavailable", "error", err)
		return SyncOutcomeFailed, err
	}

	now := uc.now()
	if ch.IsTokenExpired(now) {
		outcome, err := uc.refresh(ctx, log, adapter, ch, now)
		if outcome != "" {
			return outcome, err
		}
	}

	followers, err := adapter.FetchFollowerCount(ctx, ch.AccessToken())
	if err != nil {
		log.Warnw("follower metric fetch failed", "error", err)
		return SyncOutcomeFailed, err
	}

	recordedAt := uc.now()
	snapshot, err := channel.NewStatsSnapshot(ch.ID(), followers, recordedAt)
	if err != nil {
		return SyncOutcomeFailed, err
	}
	if err := uc.stats.Append(ctx, snapshot); err != nil {
		log.Errorw("failed to append stats snapshot", "error", err)
		return SyncOutcomeFailed, fmt.Errorf("failed to append stats snapshot: %w", err)
	}

	ch.RecordSync(followers, recordedAt)
	if err := uc.channels.UpdateSyncStats(ctx, ch); err != nil {
		log.Errorw("failed to update channel after sync", "error", err)
		return SyncOutcomeFailed, fmt.Errorf("failed to update channel: %w", err)
	}

	uc.syncPosts(ctx, log, adapter, ch)

	log.Debugw("channel synced", "followers", followers)
	return SyncOutcomeSynced, nil
}

// refresh returns an empty outcome when the cycle should continue.
func (uc *SyncChannelsUseCase) refresh(
	ctx context.Context,
	log logger.Interface,
	adapter channel.ProviderAdapter,
	ch *channel.Channel,
	now time.Time,
) (SyncOutcome, error) {
	var (
		grant *channel.TokenGrant
		err   error
	)
	if ch.HasRefreshToken() {
		grant, err = adapter.Refresh(ctx, ch.RefreshToken())
	} else {
		err = channel.NewPermanentError(ch.Provider(), "refresh", "", errors.New("no refresh token present"))
	}

	switch {
	case err == nil:
		previous := ch.AccessToken()
		if err := ch.ApplyRefresh(grant); err != nil {
			return SyncOutcomeFailed, err
		}
		applied, err := uc.channels.UpdateTokens(ctx, ch, previous)
		if err != nil {
			log.Errorw("failed to persist refreshed token", "error", err)
			return SyncOutcomeFailed, fmt.Errorf("failed to update channel: %w", err)
		}
		if !applied {
			log.Infow("channel reauthorized during sync, dropping refreshed token")
			return SyncOutcomeSkipped, nil
		}
		log.Infow("access token refreshed")
		return "", nil

	case channel.IsPermanent(err):
		if !ch.HasRefreshToken() && ch.ExpiredWithin(now, uc.opts.ExpiryGrace) {
			log.Warnw("token expired within grace window, keeping channel active", "grace", uc.opts.ExpiryGrace.String())
			return SyncOutcomeFailed, channel.NewTransientError(ch.Provider(), "refresh", 0, err)
		}
		dead := ch.AccessToken()
		ch.Deactivate()
		applied, updErr := uc.channels.DeactivateGrant(ctx, ch, dead)
		if updErr != nil {
			log.Errorw("failed to deactivate channel", "error", updErr)
			return SyncOutcomeFailed, fmt.Errorf("failed to update channel: %w", updErr)
		}
		if !applied {
			log.Infow("channel reauthorized during sync, keeping it active", "reason", err)
			return SyncOutcomeSkipped, nil
		}
		log.Warnw("channel deactivated, reauthorization required", "reason", err)
		return SyncOutcomeDeactivated, nil

	default:
		log.Warnw("token refresh failed, will retry next cycle", "error", err)
		return SyncOutcomeFailed, err
	}
}

// syncPosts upserts recent posts and appends one stats row per post.
func (uc *SyncChannelsUseCase) syncPosts(ctx context.Context, log logger.Interface, adapter channel.ProviderAdapter, ch *channel.Channel) {
	raws, err := adapter.FetchRecentPosts(ctx, ch.AccessToken())
	if err != nil {
		log.Warnw("recent posts fetch failed", "error", err)
		return
	}

	stored := 0
	for _, raw := range raws {
		if err := uc.savePost(ctx, ch.ID(), raw); err != nil {
			log.Warnw("failed to save post", "provider_post_id", raw.ProviderPostID, "error", err)
			continue
		}
		stored++
	}
	if len(raws) > 0 {
		log.Debugw("posts synced", "fetched", len(raws), "stored", stored)
	}
}

func (uc *SyncChannelsUseCase) savePost(ctx context.Context, channelID uint, raw channel.RawPost) error {
	now := uc.now()

	post, err := uc.posts.FindByProviderPostID(ctx, channelID, raw.ProviderPostID)
	if err != nil {
		return fmt.Errorf("failed to look up post: %w", err)
	}
	if post == nil {
		post, err = channel.NewPost(channelID, raw, now)
		if err != nil {
			return err
		}
	} else {
		post.Merge(raw, now)
	}

	if err := uc.posts.Save(ctx, post); err != nil {
		return fmt.Errorf("failed to save post: %w", err)
	}
	if err := uc.posts.AppendStats(ctx, channel.NewPostStats(post.ID, raw, now)); err != nil {
		return fmt.Errorf("failed to append post stats: %w", err)
	}
	return nil
}
