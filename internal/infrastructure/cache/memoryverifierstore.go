package cache

import (
	"context"
	"errors"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryVerifierStore keeps PKCE code verifiers in process memory, keyed by
// OAuth state. Entries are single-use and expire after the configured TTL.
type MemoryVerifierStore struct {
	cache *ttlcache.Cache[string, string]
}

// NewMemoryVerifierStore starts the expiry loop. Call Stop to release it.
func NewMemoryVerifierStore(ttl time.Duration) *MemoryVerifierStore {
	c := ttlcache.New(
		ttlcache.WithTTL[string, string](ttl),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	go c.Start()

	return &MemoryVerifierStore{cache: c}
}

func (s *MemoryVerifierStore) Store(_ context.Context, state, codeVerifier string) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if codeVerifier == "" {
		return errors.New("code_verifier cannot be empty")
	}
	s.cache.Set(state, codeVerifier, ttlcache.DefaultTTL)
	return nil
}

// Take returns the verifier stored under state and removes it.
func (s *MemoryVerifierStore) Take(_ context.Context, state string) (string, bool, error) {
	if state == "" {
		return "", false, nil
	}
	item, ok := s.cache.GetAndDelete(state)
	if !ok || item == nil || item.IsExpired() {
		return "", false, nil
	}
	return item.Value(), true, nil
}

func (s *MemoryVerifierStore) Stop() {
	s.cache.Stop()
}
