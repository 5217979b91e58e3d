package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/channelsync/internal/interfaces/http/handlers"
	"github.com/orris-inc/channelsync/internal/interfaces/http/middleware"
)

// OAuthRouteConfig holds dependencies for the channel authorization routes.
type OAuthRouteConfig struct {
	OAuthHandler   *handlers.OAuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    *middleware.RateLimiter
}

// SetupOAuthRoutes configures the authorize and callback routes. The callback
// is called by the provider's redirect and carries no bearer token.
func SetupOAuthRoutes(engine *gin.Engine, cfg *OAuthRouteConfig) {
	oauth := engine.Group("/oauth")
	oauth.Use(cfg.RateLimiter.Limit())
	{
		oauth.GET("/:provider/authorize", cfg.AuthMiddleware.RequireAuth(), cfg.OAuthHandler.Authorize)
		oauth.GET("/:provider/callback", cfg.OAuthHandler.Callback)
	}
}
