package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultVerifierKeyPrefix = "channelsync:pkce:"

// RedisVerifierStore keeps PKCE code verifiers in Redis so any replica can
// serve the callback.
type RedisVerifierStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisVerifierStore(client *redis.Client, prefix string, ttl time.Duration) *RedisVerifierStore {
	if prefix == "" {
		prefix = DefaultVerifierKeyPrefix
	}
	return &RedisVerifierStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisVerifierStore) Store(ctx context.Context, state, codeVerifier string) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if codeVerifier == "" {
		return errors.New("code_verifier cannot be empty")
	}

	if err := s.client.Set(ctx, s.prefix+state, codeVerifier, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store code verifier in redis: %w", err)
	}
	return nil
}

// Take reads and deletes the verifier in one GETDEL so a state can be
// redeemed only once.
func (s *RedisVerifierStore) Take(ctx context.Context, state string) (string, bool, error) {
	if state == "" {
		return "", false, nil
	}

	verifier, err := s.client.GetDel(ctx, s.prefix+state).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to take code verifier from redis: %w", err)
	}
	return verifier, true, nil
}
