package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/channelsync/internal/application/channel/usecases"
	"github.com/orris-inc/channelsync/internal/domain/channel"
	"github.com/orris-inc/channelsync/internal/shared/constants"
	apperrors "github.com/orris-inc/channelsync/internal/shared/errors"
	"github.com/orris-inc/channelsync/internal/shared/logger"
	"github.com/orris-inc/channelsync/internal/shared/utils"
)

// OAuthHandler serves the two legs of a channel authorization: the consent URL
// for the dashboard and the provider's redirect back.
type OAuthHandler struct {
	authorizeUC buildAuthorizationURLUseCase
	callbackUC  handleCallbackUseCase
	frontendURL string
	logger      logger.Interface
}

func NewOAuthHandler(
	authorizeUC buildAuthorizationURLUseCase,
	callbackUC handleCallbackUseCase,
	frontendURL string,
	logger logger.Interface,
) *OAuthHandler {
	return &OAuthHandler{
		authorizeUC: authorizeUC,
		callbackUC:  callbackUC,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}
}

type authorizeQuery struct {
	ProjectID uint `form:"projectId" binding:"required,gt=0"`
}

type AuthorizeResponse struct {
	AuthorizationURL string `json:"authorizationUrl"`
}

// Authorize handles GET /oauth/:provider/authorize?projectId=
func (h *OAuthHandler) Authorize(c *gin.Context) {
	userID, err := requireUserID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var uri providerURI
	if err := c.ShouldBindUri(&uri); err != nil {
		utils.ErrorResponseWithError(c, utils.ValidationError(err))
		return
	}
	var query authorizeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.ErrorResponseWithError(c, utils.ValidationError(err))
		return
	}
	provider, _ := channel.ParseProvider(uri.Provider)

	result, err := h.authorizeUC.Execute(c.Request.Context(), usecases.BuildAuthorizationURLCommand{
		Provider:  provider,
		ProjectID: query.ProjectID,
		UserID:    userID,
	})
	if err != nil {
		if !apperrors.IsAppError(err) {
			h.logger.Errorw("failed to build authorization url",
				"provider", provider,
				"project_id", query.ProjectID,
				"error", err,
			)
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthorizeResponse{AuthorizationURL: result.AuthorizationURL})
}

// Callback handles GET /oauth/:provider/callback. Every outcome is a 302 to
// the frontend; errors travel as a code in the query string.
func (h *OAuthHandler) Callback(c *gin.Context) {
	rawProvider := c.Param(constants.ParamProvider)
	provider, err := channel.ParseProvider(rawProvider)
	if err != nil {
		h.logger.Warnw("callback for unsupported provider", "provider", rawProvider)
		h.redirectError(c, constants.OAuthErrorUnsupported, rawProvider)
		return
	}

	if providerErr := c.Query("error"); providerErr != "" {
		h.logger.Warnw("provider returned an authorization error",
			"provider", provider,
			"error", providerErr,
			"error_description", c.Query("error_description"),
		)
		h.redirectError(c, constants.ProviderOAuthErrorCode(providerErr), provider.String())
		return
	}

	code := c.Query("code")
	if code == "" {
		h.redirectError(c, constants.OAuthErrorMissingCode, provider.String())
		return
	}
	state := c.Query("state")
	if state == "" {
		h.redirectError(c, constants.OAuthErrorMissingState, provider.String())
		return
	}

	result, err := h.callbackUC.Execute(c.Request.Context(), usecases.HandleCallbackCommand{
		Provider: provider,
		Code:     code,
		State:    state,
	})
	if err != nil {
		errCode := callbackErrorCode(err)
		h.logger.Warnw("oauth callback failed",
			"provider", provider,
			"code", errCode,
			"error", err,
		)
		h.redirectError(c, errCode, provider.String())
		return
	}

	h.logger.Infow("channel connected",
		"provider", provider,
		"project_id", result.ProjectID,
		"channel_id", result.ChannelID,
		"reauthorized", result.Reauthorized,
	)
	target := h.frontendURL + "/dashboard/projects/" + strconv.FormatUint(uint64(result.ProjectID), 10) +
		"?" + url.Values{"connected": {provider.String()}}.Encode()
	c.Redirect(http.StatusFound, target)
}

func (h *OAuthHandler) redirectError(c *gin.Context, code constants.OAuthErrorCode, platform string) {
	q := url.Values{}
	q.Set("error", string(code))
	q.Set("platform", platform)
	c.Redirect(http.StatusFound, h.frontendURL+"/dashboard?"+q.Encode())
}

func callbackErrorCode(err error) constants.OAuthErrorCode {
	switch {
	case errors.Is(err, channel.ErrInvalidState):
		return constants.OAuthErrorInvalidState
	case errors.Is(err, channel.ErrTokenExchangeFailed):
		return constants.OAuthErrorExchangeFailed
	}

	if appErr := apperrors.GetAppError(err); appErr != nil {
		switch appErr.Type {
		case apperrors.ErrorTypeNotFound:
			return constants.OAuthErrorNotFound
		case apperrors.ErrorTypeNotConfigured:
			return constants.OAuthErrorNotConfigured
		case apperrors.ErrorTypeValidation:
			return constants.OAuthErrorUnsupported
		}
	}
	return constants.OAuthErrorFailed
}
