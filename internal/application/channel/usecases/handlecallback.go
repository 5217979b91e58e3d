package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/orris-inc/channelsync/internal/domain/channel"
	"github.com/orris-inc/channelsync/internal/domain/project"
	"github.com/orris-inc/channelsync/internal/shared/biztime"
	"github.com/orris-inc/channelsync/internal/shared/db"
	"github.com/orris-inc/channelsync/internal/shared/logger"
)

type HandleCallbackCommand struct {
	Provider channel.Provider
	Code     string
	State    string
}

type HandleCallbackResult struct {
	ProjectID    uint
	ChannelID    uint
	Reauthorized bool
}

type HandleCallbackUseCase struct {
	projects  project.Repository
	channels  channel.Repository
	stats     channel.StatsRepository
	registry  channel.AdapterRegistry
	codec     StateCodec
	verifiers VerifierStore
	txMgr     TransactionRunner
	syncer    SyncTrigger
	logger    logger.Interface
}

func NewHandleCallbackUseCase(
	projects project.Repository,
	channels channel.Repository,
	stats channel.StatsRepository,
	registry channel.AdapterRegistry,
	codec StateCodec,
	verifiers VerifierStore,
	txMgr TransactionRunner,
	syncer SyncTrigger,
	logger logger.Interface,
) *HandleCallbackUseCase {
	return &HandleCallbackUseCase{
		projects:  projects,
		channels:  channels,
		stats:     stats,
		registry:  registry,
		codec:     codec,
		verifiers: verifiers,
		txMgr:     txMgr,
		syncer:    syncer,
		logger:    logger,
	}
}

// Execute completes an authorization: it redeems the code, links or
// reactivates the channel, records the first follower snapshot and schedules
// a sync once the link is committed.
func (uc *HandleCallbackUseCase) Execute(ctx context.Context, cmd HandleCallbackCommand) (*HandleCallbackResult, error) {
	projectID, userID, err := uc.codec.Decode(cmd.State)
	if err != nil {
		uc.logger.Warnw("callback with invalid state", "provider", cmd.Provider, "error", err)
		return nil, err
	}

	if _, err := uc.projects.GetOwned(ctx, projectID, userID); err != nil {
		uc.logger.Warnw("callback for project not owned by user",
			"project_id", projectID,
			"user_id", userID,
			"error", err,
		)
		return nil, err
	}

	adapter, err := uc.registry.Adapter(cmd.Provider)
	if err != nil {
		return nil, adapterError(cmd.Provider, err)
	}

	var verifier string
	if cmd.Provider.UsesPKCE() {
		v, found, err := uc.verifiers.Take(ctx, cmd.State)
		if err != nil {
			uc.logger.Warnw("failed to read code verifier", "provider", cmd.Provider, "error", err)
		}
		if !found {
			uc.logger.Warnw("no code verifier for state", "provider", cmd.Provider, "project_id", projectID)
		}
		verifier = v
	}

	grant, err := adapter.ExchangeCode(ctx, cmd.Code, verifier)
	if err != nil {
		var exErr *channel.TokenExchangeError
		if errors.As(err, &exErr) {
			uc.logger.Errorw("token exchange failed",
				"provider", cmd.Provider,
				"project_id", projectID,
				"status", exErr.StatusCode,
				"response", exErr.Raw,
			)
			return nil, err
		}
		uc.logger.Errorw("token exchange failed", "provider", cmd.Provider, "project_id", projectID, "error", err)
		return nil, fmt.Errorf("%w: %w", channel.ErrTokenExchangeFailed, err)
	}

	identity, err := adapter.FetchIdentity(ctx, grant.AccessToken)
	if err != nil {
		uc.logger.Warnw("identity fetch failed, using placeholder",
			"provider", cmd.Provider,
			"project_id", projectID,
			"error", err,
		)
		identity = channel.PlaceholderIdentity()
	}
	accountID := channel.ResolveAccountID(identity, grant)

	result := &HandleCallbackResult{ProjectID: projectID}
	txErr := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		ch, err := uc.upsert(txCtx, projectID, cmd.Provider, accountID, grant, identity, result)
		if err != nil {
			return err
		}

		if identity.FollowerCount != nil && *identity.FollowerCount > 0 {
			snapshot, err := channel.NewStatsSnapshot(ch.ID(), *identity.FollowerCount, biztime.NowUTC())
			if err != nil {
				return fmt.Errorf("failed to build stats snapshot: %w", err)
			}
			if err := uc.stats.Append(txCtx, snapshot); err != nil {
				return fmt.Errorf("failed to append stats snapshot: %w", err)
			}
		}

		channelID := ch.ID()
		db.AfterCommit(txCtx, func() {
			uc.syncer.TriggerSync(channelID)
		})
		return nil
	})
	if txErr != nil {
		uc.logger.Errorw("failed to save channel", "provider", cmd.Provider, "project_id", projectID, "error", txErr)
		return nil, txErr
	}

	uc.logger.Infow("channel connected",
		"provider", cmd.Provider,
		"project_id", projectID,
		"channel_id", result.ChannelID,
		"account_id", accountID,
		"reauthorized", result.Reauthorized,
	)
	return result, nil
}

// upsert links the account, reusing the row of an earlier authorization of the
// same (project, provider, account) if one exists.
func (uc *HandleCallbackUseCase) upsert(
	ctx context.Context,
	projectID uint,
	provider channel.Provider,
	accountID string,
	grant *channel.TokenGrant,
	identity *channel.Identity,
	result *HandleCallbackResult,
) (*channel.Channel, error) {
	existing, err := uc.channels.FindByAccount(ctx, projectID, provider, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up channel: %w", err)
	}

	if existing == nil {
		ch, err := channel.NewChannel(projectID, provider, accountID, grant, identity)
		if err != nil {
			return nil, fmt.Errorf("failed to create channel: %w", err)
		}
		err = uc.channels.Create(ctx, ch)
		if err == nil {
			result.ChannelID = ch.ID()
			return ch, nil
		}
		if !errors.Is(err, channel.ErrChannelExists) {
			return nil, fmt.Errorf("failed to create channel: %w", err)
		}

		// A concurrent callback for the same account inserted first.
		existing, err = uc.channels.LockByAccount(ctx, projectID, provider, accountID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up channel: %w", err)
		}
		if existing == nil {
			return nil, fmt.Errorf("failed to create channel: %w", channel.ErrChannelExists)
		}
		uc.logger.Infow("channel linked concurrently, reauthorizing",
			"provider", provider,
			"project_id", projectID,
			"channel_id", existing.ID(),
		)
	}

	if err := existing.Reauthorize(grant, identity); err != nil {
		return nil, fmt.Errorf("failed to reauthorize channel: %w", err)
	}
	if err := uc.channels.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update channel: %w", err)
	}
	result.ChannelID = existing.ID()
	result.Reauthorized = true
	return existing, nil
}
