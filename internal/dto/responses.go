package dto

import "github.com/yhsong/finbell/internal/domain"

// Stable error codes the frontend branches on. Messages are informational
// only and must never carry raw internals.
const (
	CodeInvalidCredentials    = "INVALID_CREDENTIALS"
	CodeTokenExpired          = "TOKEN_EXPIRED"
	CodeInvalidToken          = "INVALID_TOKEN"
	CodeUnknownProvider       = "UNKNOWN_PROVIDER"
	CodeUnsupportedProvider   = "UNSUPPORTED_PROVIDER"
	CodeOAuthValidationFailed = "OAUTH_VALIDATION_FAILED"
	CodeOAuthProviderError    = "OAUTH_PROVIDER_ERROR"
	CodeDuplicateLink         = "DUPLICATE_LINK"
	CodeUserNotFound          = "USER_NOT_FOUND"
	CodeLastAuthMethod        = "LAST_AUTH_METHOD"
	CodeVerificationInvalid   = "VERIFICATION_INVALID"
	CodeVerificationExpired   = "VERIFICATION_EXPIRED"
	CodeValidationFailed      = "VALIDATION_FAILED"
	CodeNotFound              = "NOT_FOUND"
	CodeInternalError         = "INTERNAL_ERROR"
)

// ErrorResponse is the error body of every JSON endpoint
type ErrorResponse struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

// TokenResponse returns an issued verification token
type TokenResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// AuthResponse returns a session token and its owner
type AuthResponse struct {
	AccessToken string       `json:"accessToken"`
	User        *domain.User `json:"user"`
}

// ConnectURLResponse returns the consent-screen URL for an identity-connect flow
type ConnectURLResponse struct {
	URL string `json:"url"`
}

// SuccessResponse is a bare confirmation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// PageResponse wraps a list with pagination metadata
type PageResponse struct {
	Items  any `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
