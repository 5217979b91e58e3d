package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/channelsync/internal/application/channel/usecases"
	"github.com/orris-inc/channelsync/internal/shared/errors"
	"github.com/orris-inc/channelsync/internal/shared/logger"
	"github.com/orris-inc/channelsync/internal/shared/utils"
)

type ChannelHandler struct {
	listUC       listProjectChannelsUseCase
	disconnectUC disconnectChannelUseCase
	logger       logger.Interface
}

func NewChannelHandler(
	listUC listProjectChannelsUseCase,
	disconnectUC disconnectChannelUseCase,
	logger logger.Interface,
) *ChannelHandler {
	return &ChannelHandler{
		listUC:       listUC,
		disconnectUC: disconnectUC,
		logger:       logger,
	}
}

// ListChannels handles GET /api/projects/:projectId/channels
func (h *ChannelHandler) ListChannels(c *gin.Context) {
	userID, err := requireUserID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var uri projectURI
	if err := c.ShouldBindUri(&uri); err != nil {
		utils.ErrorResponseWithError(c, utils.ValidationError(err))
		return
	}

	channels, err := h.listUC.Execute(c.Request.Context(), usecases.ListProjectChannelsQuery{
		ProjectID: uri.ProjectID,
		UserID:    userID,
	})
	if err != nil {
		if !errors.IsAppError(err) {
			h.logger.Errorw("failed to list channels", "project_id", uri.ProjectID, "error", err)
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", channels)
}

// DisconnectChannel handles DELETE /api/projects/:projectId/channels/:channelId
func (h *ChannelHandler) DisconnectChannel(c *gin.Context) {
	userID, err := requireUserID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var uri projectChannelURI
	if err := c.ShouldBindUri(&uri); err != nil {
		utils.ErrorResponseWithError(c, utils.ValidationError(err))
		return
	}

	err = h.disconnectUC.Execute(c.Request.Context(), usecases.DisconnectChannelCommand{
		ProjectID: uri.ProjectID,
		ChannelID: uri.ChannelID,
		UserID:    userID,
	})
	if err != nil {
		if !errors.IsAppError(err) {
			h.logger.Errorw("failed to disconnect channel",
				"project_id", uri.ProjectID,
				"channel_id", uri.ChannelID,
				"error", err,
			)
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}
