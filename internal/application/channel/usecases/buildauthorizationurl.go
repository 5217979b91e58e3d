package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/channelsync/internal/domain/channel"
	"github.com/orris-inc/channelsync/internal/domain/project"
	apperrors "github.com/orris-inc/channelsync/internal/shared/errors"
	"github.com/orris-inc/channelsync/internal/shared/logger"
)

type BuildAuthorizationURLCommand struct {
	Provider  channel.Provider
	ProjectID uint
	UserID    string
}

type BuildAuthorizationURLResult struct {
	AuthorizationURL string
	State            string
}

type BuildAuthorizationURLUseCase struct {
	projects  project.Repository
	registry  channel.AdapterRegistry
	codec     StateCodec
	verifiers VerifierStore
	pkce      PKCEGenerator
	logger    logger.Interface
}

func NewBuildAuthorizationURLUseCase(
	projects project.Repository,
	registry channel.AdapterRegistry,
	codec StateCodec,
	verifiers VerifierStore,
	pkce PKCEGenerator,
	logger logger.Interface,
) *BuildAuthorizationURLUseCase {
	return &BuildAuthorizationURLUseCase{
		projects:  projects,
		registry:  registry,
		codec:     codec,
		verifiers: verifiers,
		pkce:      pkce,
		logger:    logger,
	}
}

// Execute checks ownership and provider configuration, then returns the
// provider's consent URL. PKCE providers get a verifier stored under the state.
func (uc *BuildAuthorizationURLUseCase) Execute(ctx context.Context, cmd BuildAuthorizationURLCommand) (*BuildAuthorizationURLResult, error) {
	if !cmd.Provider.IsValid() {
		return nil, apperrors.NewValidationError("unsupported provider", cmd.Provider.String())
	}
	if cmd.ProjectID == 0 {
		return nil, apperrors.NewValidationError("project id is required")
	}

	if _, err := uc.projects.GetOwned(ctx, cmd.ProjectID, cmd.UserID); err != nil {
		uc.logger.Warnw("authorize rejected: project not owned",
			"project_id", cmd.ProjectID,
			"user_id", cmd.UserID,
			"error", err,
		)
		return nil, err
	}

	adapter, err := uc.registry.Adapter(cmd.Provider)
	if err != nil {
		return nil, adapterError(cmd.Provider, err)
	}

	state := uc.codec.Encode(cmd.ProjectID, cmd.UserID)

	var challenge string
	if cmd.Provider.UsesPKCE() {
		verifier, ch, err := uc.pkce()
		if err != nil {
			return nil, fmt.Errorf("failed to generate pkce pair: %w", err)
		}
		if err := uc.verifiers.Store(ctx, state, verifier); err != nil {
			uc.logger.Errorw("failed to store code verifier", "provider", cmd.Provider, "error", err)
			return nil, apperrors.NewInternalError("failed to start authorization")
		}
		challenge = ch
	}

	uc.logger.Infow("authorization url built",
		"provider", cmd.Provider,
		"project_id", cmd.ProjectID,
		"pkce", challenge != "",
	)

	return &BuildAuthorizationURLResult{
		AuthorizationURL: adapter.AuthorizationURL(state, challenge),
		State:            state,
	}, nil
}
