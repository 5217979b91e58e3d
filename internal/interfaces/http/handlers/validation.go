package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/orris-inc/channelsync/internal/interfaces/http/middleware"
	"github.com/orris-inc/channelsync/internal/shared/errors"
	"github.com/orris-inc/channelsync/internal/shared/utils"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		utils.ConfigureValidator(v)
	}
}

type providerURI struct {
	Provider string `uri:"provider" binding:"required,provider"`
}

type projectURI struct {
	ProjectID uint `uri:"projectId" binding:"required,gt=0"`
}

type projectChannelURI struct {
	ProjectID uint `uri:"projectId" binding:"required,gt=0"`
	ChannelID uint `uri:"channelId" binding:"required,gt=0"`
}

func requireUserID(c *gin.Context) (string, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return "", errors.NewUnauthorizedError("authentication required")
	}
	return userID, nil
}
