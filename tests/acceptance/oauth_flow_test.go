package acceptance

import (
	"net/http"
	"net/url"

	"github.com/yhsong/finbell/internal/dto"
)

func (s *Suite) TestAuthorizeRedirectsToProvider() {
	resp := s.getJSON("/auth/oauth/google", "", nil)
	s.Equal(http.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get("Location"))
	s.Require().NoError(err)
	s.Equal("accounts.google.com", location.Host)
	s.Contains(location.Query().Get("redirect_uri"), "/auth/oauth/google/callback")
}

func (s *Suite) TestAuthorizeUnknownProvider() {
	var errResp dto.ErrorResponse
	resp := s.getJSON("/auth/oauth/github", "", &errResp)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal(dto.CodeUnknownProvider, errResp.ErrorCode)
}

func (s *Suite) TestCallbackUpstreamErrorRedirects() {
	resp := s.getJSON("/auth/oauth/google/callback?error=access_denied&error_description=user+backed+out", "", nil)
	s.Equal(http.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get("Location"))
	s.Require().NoError(err)
	s.Contains(location.Path, "/auth/error")
	s.Equal(dto.CodeOAuthProviderError, location.Query().Get("errorCode"))
	s.Equal("user backed out", location.Query().Get("message"))
}

func (s *Suite) TestCallbackUnknownProviderRedirects() {
	resp := s.getJSON("/auth/oauth/github/callback?code=whatever", "", nil)
	s.Equal(http.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get("Location"))
	s.Require().NoError(err)
	s.Contains(location.Path, "/auth/error")
	s.Equal(dto.CodeUnknownProvider, location.Query().Get("errorCode"))
}

func (s *Suite) TestConnectURLRequiresAuth() {
	var errResp dto.ErrorResponse
	resp := s.getJSON("/api/v1/auth/oauth/google/connect", "", &errResp)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal(dto.CodeInvalidToken, errResp.ErrorCode)
}

func (s *Suite) TestConnectURLCarriesStateToken() {
	token := s.createVerifiedUser("connect@example.com", "connect-password-1")

	var connectResp dto.ConnectURLResponse
	resp := s.getJSON("/api/v1/auth/oauth/kakao/connect", token, &connectResp)
	s.Equal(http.StatusOK, resp.StatusCode)

	consent, err := url.Parse(connectResp.URL)
	s.Require().NoError(err)
	s.Equal("kauth.kakao.com", consent.Host)
	s.NotEmpty(consent.Query().Get("state"))
}

func (s *Suite) TestListIdentitiesEmpty() {
	token := s.createVerifiedUser("identities@example.com", "identities-pass-1")

	var identities []map[string]any
	resp := s.getJSON("/api/v1/auth/oauth", token, &identities)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Empty(identities)
}

func (s *Suite) TestDisconnectNotLinked() {
	token := s.createVerifiedUser("unlinked@example.com", "unlinked-pass-1")

	var errResp dto.ErrorResponse
	resp := s.doJSON(http.MethodDelete, "/api/v1/auth/oauth/google", nil, token, &errResp)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal(dto.CodeValidationFailed, errResp.ErrorCode)
}
