package usecases

import (
	"context"
)

// StateCodec signs and verifies the OAuth state parameter.
type StateCodec interface {
	Encode(projectID uint, userID string) string
	Decode(state string) (uint, string, error)
}

// VerifierStore holds PKCE code verifiers between authorize and callback.
// Take removes the entry it returns.
type VerifierStore interface {
	Store(ctx context.Context, state, codeVerifier string) error
	Take(ctx context.Context, state string) (string, bool, error)
}

// PKCEGenerator returns a fresh code verifier and its S256 challenge.
type PKCEGenerator func() (codeVerifier, codeChallenge string, err error)

type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SyncTrigger starts a background sync of one channel.
type SyncTrigger interface {
	TriggerSync(channelID uint)
}
