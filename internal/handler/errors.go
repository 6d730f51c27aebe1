package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yhsong/finbell/internal/dto"
	"github.com/yhsong/finbell/internal/oauth"
	"github.com/yhsong/finbell/internal/repository"
	"github.com/yhsong/finbell/internal/service"
	"github.com/yhsong/finbell/internal/utils"
)

// classify maps a service error to an HTTP status, stable error code and a
// safe message. Unknown errors collapse to a generic internal error so raw
// internals never reach the wire.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.CodeInvalidCredentials, "invalid email or password"
	case errors.Is(err, utils.ErrTokenExpired):
		return http.StatusUnauthorized, dto.CodeTokenExpired, "token is expired"
	case errors.Is(err, utils.ErrInvalidToken):
		return http.StatusUnauthorized, dto.CodeInvalidToken, "token is invalid"
	case errors.Is(err, utils.ErrUnsupportedProvider):
		return http.StatusBadRequest, dto.CodeUnsupportedProvider, "unsupported oauth provider"
	case errors.Is(err, oauth.ErrUnknownProvider):
		return http.StatusNotFound, dto.CodeUnknownProvider, "unknown oauth provider"
	case errors.Is(err, oauth.ErrIncompleteProfile):
		return http.StatusBadRequest, dto.CodeOAuthValidationFailed, "provider did not return a usable profile"
	case errors.Is(err, oauth.ErrCodeExchange):
		return http.StatusBadGateway, dto.CodeOAuthProviderError, "provider request failed"
	case errors.Is(err, service.ErrDuplicateLink):
		return http.StatusConflict, dto.CodeDuplicateLink, "identity already linked to another account"
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, dto.CodeUserNotFound, "user not found"
	case errors.Is(err, service.ErrLastAuthMethod):
		return http.StatusBadRequest, dto.CodeLastAuthMethod, "cannot remove the last authentication method"
	case errors.Is(err, service.ErrVerificationInvalid):
		return http.StatusBadRequest, dto.CodeVerificationInvalid, "verification token or code is invalid"
	case errors.Is(err, service.ErrVerificationExpired):
		return http.StatusBadRequest, dto.CodeVerificationExpired, "verification token is expired"
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, dto.CodeValidationFailed, "email is already registered"
	case errors.Is(err, service.ErrNotLinked):
		return http.StatusBadRequest, dto.CodeValidationFailed, "provider is not linked to this account"
	case errors.Is(err, service.ErrInvalidTarget):
		return http.StatusBadRequest, dto.CodeValidationFailed, "invalid subscription target"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, dto.CodeNotFound, "resource not found"
	default:
		return http.StatusInternalServerError, dto.CodeInternalError, "internal server error"
	}
}

// respondError writes the classified error as a JSON body.
func respondError(c *gin.Context, err error) {
	status, code, message := classify(err)
	c.JSON(status, dto.ErrorResponse{ErrorCode: code, Message: message})
}

// respondBindingError reports malformed request bodies.
func respondBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		ErrorCode: dto.CodeValidationFailed,
		Message:   err.Error(),
	})
}
