package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/orris-inc/channelsync/internal/application/channel/usecases"
	"github.com/orris-inc/channelsync/internal/infrastructure/auth"
	"github.com/orris-inc/channelsync/internal/infrastructure/config"
	"github.com/orris-inc/channelsync/internal/infrastructure/providers"
	"github.com/orris-inc/channelsync/internal/infrastructure/scheduler"
	"github.com/orris-inc/channelsync/internal/interfaces/http/middleware"
	"github.com/orris-inc/channelsync/internal/shared/db"
	"github.com/orris-inc/channelsync/internal/shared/logger"
)

// Container holds the infrastructure, repositories, use cases, handlers and
// background services, wired together. Shutdown releases what it started.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	repos *repositories
	ucs   *allUseCases
	hdlrs *allHandlers

	// Middlewares
	authMiddleware *middleware.AuthMiddleware
	rateLimiter    *middleware.RateLimiter

	// Auth and provider services
	jwtSvc        *auth.JWTService
	stateCodec    *auth.StateCodec
	registry      *providers.Registry
	verifierStore verifierStore
	txMgr         *db.TransactionManager

	schedulerManager *scheduler.SchedulerManager
}

// NewContainer wires every component. redisClient may be nil when neither the
// PKCE store nor the rate limiter uses Redis; NewContainer then connects on
// demand.
func NewContainer(database *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     database,
		cfg:    cfg,
		log:    log,
		redis:  redisClient,
	}

	// Section 1: Redis, repositories, auth and provider services
	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	// Section 2: channel use cases
	c.initUseCases()

	// Section 3: handlers
	c.initHandlers()

	return c, nil
}

// SyncUseCase exposes the sync use case to the scheduler and the CLI.
func (c *Container) SyncUseCase() *usecases.SyncChannelsUseCase {
	return c.ucs.syncChannelsUC
}

// Registry exposes the provider registry.
func (c *Container) Registry() *providers.Registry {
	return c.registry
}

// JWTService exposes the access token service, used by the token command.
func (c *Container) JWTService() *auth.JWTService {
	return c.jwtSvc
}

// Shutdown stops background services and releases connections the container opened.
func (c *Container) Shutdown() {
	if c.schedulerManager != nil {
		if err := c.schedulerManager.Stop(); err != nil {
			c.log.Errorw("failed to stop scheduler", "error", err)
		}
	}
	if c.verifierStore != nil {
		c.verifierStore.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Warnw("failed to close redis client", "error", err)
		}
	}
}
