package http

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/channelsync/internal/application/channel/usecases"
	"github.com/orris-inc/channelsync/internal/infrastructure/auth"
	"github.com/orris-inc/channelsync/internal/infrastructure/cache"
	"github.com/orris-inc/channelsync/internal/infrastructure/config"
	"github.com/orris-inc/channelsync/internal/infrastructure/providers"
	"github.com/orris-inc/channelsync/internal/infrastructure/scheduler"
	"github.com/orris-inc/channelsync/internal/interfaces/http/middleware"
	"github.com/orris-inc/channelsync/internal/shared/db"
)

// verifierStore is a usecases.VerifierStore that owns resources.
type verifierStore interface {
	usecases.VerifierStore
	Close()
}

type memoryVerifierStore struct {
	*cache.MemoryVerifierStore
}

func (s memoryVerifierStore) Close() { s.Stop() }

type redisVerifierStore struct {
	*cache.RedisVerifierStore
}

func (redisVerifierStore) Close() {}

func (c *Container) initInfrastructure() error {
	cfg := c.cfg
	log := c.log

	if c.redis == nil && needsRedis(cfg) {
		client, err := initRedis(cfg)
		if err != nil {
			return err
		}
		c.redis = client
		log.Infow("redis connection established", "addr", cfg.Redis.GetAddr())
	}

	c.repos = newRepositories(c.db, log)
	c.txMgr = db.NewTransactionManager(c.db)

	c.jwtSvc = auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer, cfg.Auth.JWT.ExpiresIn)
	codec, err := auth.NewStateCodec(cfg.OAuth.StateSecret)
	if err != nil {
		return fmt.Errorf("failed to create state codec: %w", err)
	}
	c.stateCodec = codec

	c.registry = providers.NewRegistry(cfg.OAuth, cfg.Server.CallbackURL, providers.NewHTTPClient(cfg.Sync.HTTPTimeout))
	log.Infow("oauth providers configured", "providers", c.registry.Configured())

	switch cfg.PKCE.Store {
	case "redis":
		c.verifierStore = redisVerifierStore{cache.NewRedisVerifierStore(c.redis, cache.DefaultVerifierKeyPrefix, cfg.PKCE.TTL)}
	default:
		c.verifierStore = memoryVerifierStore{cache.NewMemoryVerifierStore(cfg.PKCE.TTL)}
	}

	c.authMiddleware = middleware.NewAuthMiddleware(c.jwtSvc, log)
	var limiterClient *redis.Client
	if cfg.RateLimit.Enabled {
		limiterClient = c.redis
	}
	c.rateLimiter = middleware.NewRateLimiter(limiterClient, cfg.RateLimit.Requests, cfg.RateLimit.Window, log)

	return nil
}

// InitScheduler registers the daily sync jobs. The scheduler starts with StartScheduler.
func (c *Container) InitScheduler() error {
	manager, err := scheduler.NewSchedulerManager(c.log.Named("scheduler"))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := manager.RegisterChannelSyncJobs(c.ucs.syncChannelsUC, c.cfg.Sync.Cron, c.cfg.Sync.RunOnStartup); err != nil {
		return fmt.Errorf("failed to register channel sync jobs: %w", err)
	}
	c.schedulerManager = manager
	return nil
}

func (c *Container) StartScheduler() {
	if c.schedulerManager != nil {
		c.schedulerManager.Start()
	}
}

func needsRedis(cfg *config.Config) bool {
	return cfg.PKCE.Store == "redis" || cfg.RateLimit.Enabled
}

// initRedis creates and tests the Redis client connection.
func initRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.GetAddr(), err)
	}
	return client, nil
}
