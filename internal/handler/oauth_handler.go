package handler

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/yhsong/finbell/internal/dto"
	"github.com/yhsong/finbell/internal/service"
)

// OAuthHandler drives the browser-facing OAuth redirect flow and the
// authenticated identity-management endpoints.
type OAuthHandler struct {
	oauthService    *service.OAuthService
	frontendBaseURL string
}

// NewOAuthHandler creates a new OAuth handler
func NewOAuthHandler(oauthService *service.OAuthService, frontendBaseURL string) *OAuthHandler {
	return &OAuthHandler{
		oauthService:    oauthService,
		frontendBaseURL: frontendBaseURL,
	}
}

// Authorize redirects the browser to the provider consent screen. A state
// query value (a connect-state token) is passed through untouched.
func (h *OAuthHandler) Authorize(c *gin.Context) {
	provider := c.Param("provider")
	state := c.Query("state")

	authURL, err := h.oauthService.AuthorizationURL(provider, state)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Redirect(http.StatusFound, authURL)
}

// Callback handles the provider redirect. The browser is mid-redirect here,
// so every outcome is surfaced as a redirect, never a JSON body.
func (h *OAuthHandler) Callback(c *gin.Context) {
	provider := c.Param("provider")

	// The provider itself rejected the user. Short-circuit without touching
	// the resolution engine.
	if upstreamErr := c.Query("error"); upstreamErr != "" {
		message := c.Query("error_description")
		if message == "" {
			message = upstreamErr
		}
		h.redirectError(c, dto.CodeOAuthProviderError, message)
		return
	}

	result, err := h.oauthService.HandleCallback(c.Request.Context(), provider, c.Query("code"), c.Query("state"))
	if err != nil {
		_, code, message := classify(err)
		h.redirectError(c, code, message)
		return
	}

	switch result.Kind {
	case service.CallbackConnect:
		c.Redirect(http.StatusFound, fmt.Sprintf("%s/mypage?message=%s",
			h.frontendBaseURL, url.QueryEscape(result.Message)))
	default:
		c.Redirect(http.StatusFound, fmt.Sprintf("%s/auth/success?token=%s",
			h.frontendBaseURL, url.QueryEscape(result.AccessToken)))
	}
}

func (h *OAuthHandler) redirectError(c *gin.Context, code, message string) {
	c.Redirect(http.StatusFound, fmt.Sprintf("%s/auth/error?errorCode=%s&message=%s",
		h.frontendBaseURL, url.QueryEscape(code), url.QueryEscape(message)))
}

// ListIdentities returns the identities linked to the current user
func (h *OAuthHandler) ListIdentities(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			ErrorCode: dto.CodeInvalidToken,
			Message:   "authentication required",
		})
		return
	}

	identities, err := h.oauthService.ListIdentities(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, identities)
}

// ConnectURL mints a connect-state token and returns the consent-screen URL
// for linking one more identity to the current account
func (h *OAuthHandler) ConnectURL(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			ErrorCode: dto.CodeInvalidToken,
			Message:   "authentication required",
		})
		return
	}

	connectURL, err := h.oauthService.ConnectURL(c.Request.Context(), userID, c.Param("provider"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ConnectURLResponse{URL: connectURL})
}

// Disconnect removes one linked identity from the current account
func (h *OAuthHandler) Disconnect(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			ErrorCode: dto.CodeInvalidToken,
			Message:   "authentication required",
		})
		return
	}

	if err := h.oauthService.Disconnect(c.Request.Context(), userID, c.Param("provider")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "identity disconnected"})
}
