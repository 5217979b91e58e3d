package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/channelsync/internal/interfaces/http/handlers"
	"github.com/orris-inc/channelsync/internal/interfaces/http/middleware"
)

// ChannelRouteConfig holds dependencies for project channel routes.
type ChannelRouteConfig struct {
	ChannelHandler *handlers.ChannelHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// SetupChannelRoutes configures the project channel management routes.
func SetupChannelRoutes(engine *gin.Engine, cfg *ChannelRouteConfig) {
	channels := engine.Group("/api/projects/:projectId/channels")
	channels.Use(cfg.AuthMiddleware.RequireAuth())
	{
		channels.GET("", cfg.ChannelHandler.ListChannels)
		channels.DELETE("/:channelId", cfg.ChannelHandler.DisconnectChannel)
	}
}
