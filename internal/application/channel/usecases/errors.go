package usecases

import (
	"errors"

	"github.com/orris-inc/channelsync/internal/domain/channel"
	apperrors "github.com/orris-inc/channelsync/internal/shared/errors"
)

// adapterError maps a registry lookup failure onto an AppError.
func adapterError(provider channel.Provider, err error) error {
	switch {
	case errors.Is(err, channel.ErrProviderNotConfigured):
		return apperrors.NewNotConfiguredError("oauth provider is not configured", provider.String())
	case errors.Is(err, channel.ErrUnsupportedProvider):
		return apperrors.NewValidationError("unsupported provider", provider.String())
	default:
		return err
	}
}
