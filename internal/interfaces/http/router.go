// Package http wires the channel use cases behind a gin engine.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/channelsync/internal/interfaces/http/middleware"
	"github.com/orris-inc/channelsync/internal/interfaces/http/routes"
)

// Router represents the HTTP router configuration
type Router struct {
	*Container
}

// NewRouter creates a router on top of a wired container.
func NewRouter(c *Container) *Router {
	return &Router{Container: c}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Logger(r.log))
	r.engine.Use(middleware.Recovery(r.log))
	r.engine.Use(middleware.SecurityHeaders())
	r.engine.Use(middleware.CORS(r.cfg.Server.AllowedOrigins))

	r.engine.GET("/health", r.hdlrs.healthHandler.HealthCheck)

	routes.SetupOAuthRoutes(r.engine, &routes.OAuthRouteConfig{
		OAuthHandler:   r.hdlrs.oauthHandler,
		AuthMiddleware: r.authMiddleware,
		RateLimiter:    r.rateLimiter,
	})

	routes.SetupChannelRoutes(r.engine, &routes.ChannelRouteConfig{
		ChannelHandler: r.hdlrs.channelHandler,
		AuthMiddleware: r.authMiddleware,
	})
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
