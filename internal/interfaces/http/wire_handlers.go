package http

import (
	"context"

	"github.com/orris-inc/channelsync/internal/interfaces/http/handlers"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	oauthHandler   *handlers.OAuthHandler
	channelHandler *handlers.ChannelHandler
	healthHandler  *handlers.HealthHandler
}

func (c *Container) initHandlers() {
	checks := map[string]handlers.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := c.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if c.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return c.redis.Ping(ctx).Err()
		}
	}

	c.hdlrs = &allHandlers{
		oauthHandler: handlers.NewOAuthHandler(
			c.ucs.buildAuthorizationURLUC,
			c.ucs.handleCallbackUC,
			c.cfg.Server.FrontendURL,
			c.log.Named("oauth"),
		),
		channelHandler: handlers.NewChannelHandler(
			c.ucs.listProjectChannelsUC,
			c.ucs.disconnectChannelUC,
			c.log.Named("channels"),
		),
		healthHandler: handlers.NewHealthHandler(checks, c.log),
	}
}
