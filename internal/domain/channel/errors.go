package channel

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedProvider   = errors.New("unsupported provider")
	ErrProviderNotConfigured = errors.New("oauth provider not configured")
	ErrInvalidState          = errors.New("invalid oauth state")
	ErrTokenExchangeFailed   = errors.New("token exchange failed")
	ErrChannelExists         = errors.New("channel already linked")

	// ErrTransientProvider marks failures a later retry may fix: network errors,
	// timeouts, rate limiting and unexpected responses.
	ErrTransientProvider = errors.New("transient provider error")
	// ErrPermanentGrant marks a grant the provider will never accept again.
	// The channel has to be re-authorized by its owner.
	ErrPermanentGrant = errors.New("permanent grant error")
)

// TokenExchangeError is returned when a provider does not hand out an access
// token for an authorization code. Raw holds the provider response body.
type TokenExchangeError struct {
	Provider   Provider
	StatusCode int
	Raw        string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("%s token exchange failed: status %d, body: %s", e.Provider, e.StatusCode, e.Raw)
}

func (e *TokenExchangeError) Unwrap() error {
	return ErrTokenExchangeFailed
}

// ProviderError is a classified failure of a provider API call.
type ProviderError struct {
	Provider   Provider
	Op         string
	StatusCode int
	Code       string
	Err        error
	kind       error
}

// NewTransientError classifies err as retryable.
func NewTransientError(provider Provider, op string, statusCode int, err error) *ProviderError {
	return &ProviderError{Provider: provider, Op: op, StatusCode: statusCode, Err: err, kind: ErrTransientProvider}
}

// NewPermanentError classifies err as a dead grant. code is the provider's error code, if any.
func NewPermanentError(provider Provider, op string, code string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Op: op, Code: code, Err: err, kind: ErrPermanentGrant}
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.kind)
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" [HTTP %d]", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.Err}
}

func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanentGrant)
}

func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientProvider)
}
