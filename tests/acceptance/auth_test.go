package acceptance

import (
	"net/http"

	"github.com/yhsong/finbell/internal/dto"
)

// createVerifiedUser walks the full registration flow and returns a session
// token for the account.
func (s *Suite) createVerifiedUser(email, password string) string {
	var tokenResp dto.TokenResponse
	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{Email: email}, "", &tokenResp)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	s.Require().NotEmpty(tokenResp.Token)

	code, ok := s.App.Sender.CodeFor(email)
	s.Require().True(ok, "no verification code captured for %s", email)

	resp = s.postJSON("/api/v1/auth/verify", dto.VerifyRequest{Email: email, Code: code}, "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	resp = s.postJSON("/api/v1/auth/password",
		dto.SetPasswordRequest{Token: tokenResp.Token, Password: password}, "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var authResp dto.AuthResponse
	resp = s.postJSON("/api/v1/auth/login",
		dto.LoginRequest{Email: email, Password: password}, "", &authResp)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().NotEmpty(authResp.AccessToken)

	return authResp.AccessToken
}

func (s *Suite) TestRegisterVerifyPasswordLogin() {
	email := "flow@example.com"

	var tokenResp dto.TokenResponse
	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{Email: email}, "", &tokenResp)
	s.Equal(http.StatusCreated, resp.StatusCode)
	s.NotEmpty(tokenResp.Token)

	code, ok := s.App.Sender.CodeFor(email)
	s.Require().True(ok)
	s.Regexp(`^\d{6}$`, code)

	var verified map[string]any
	resp = s.postJSON("/api/v1/auth/verify", dto.VerifyRequest{Email: email, Code: code}, "", &verified)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(true, verified["is_verified"])
	s.NotEmpty(verified["nickname"])

	resp = s.postJSON("/api/v1/auth/password",
		dto.SetPasswordRequest{Token: tokenResp.Token, Password: "correct-horse-1"}, "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var authResp dto.AuthResponse
	resp = s.postJSON("/api/v1/auth/login",
		dto.LoginRequest{Email: email, Password: "correct-horse-1"}, "", &authResp)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.NotEmpty(authResp.AccessToken)
	s.Equal(email, authResp.User.Email)

	var me map[string]any
	resp = s.getJSON("/api/v1/auth/me", authResp.AccessToken, &me)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(email, me["email"])
}

func (s *Suite) TestRegisterRejectsMalformedEmail() {
	var errResp dto.ErrorResponse
	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{Email: "not-an-email"}, "", &errResp)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal(dto.CodeValidationFailed, errResp.ErrorCode)
}

func (s *Suite) TestRegisterAgainSupersedesPriorToken() {
	email := "supersede@example.com"

	var first dto.TokenResponse
	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{Email: email}, "", &first)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var second dto.TokenResponse
	resp = s.postJSON("/api/v1/auth/register", dto.RegisterRequest{Email: email}, "", &second)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	s.NotEqual(first.Token, second.Token)

	// The first token is dead once the second is issued.
	var errResp dto.ErrorResponse
	resp = s.postJSON("/api/v1/auth/password",
		dto.SetPasswordRequest{Token: first.Token, Password: "some-password-1"}, "", &errResp)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal(dto.CodeVerificationInvalid, errResp.ErrorCode)
}

func (s *Suite) TestVerifyRejectsWrongCode() {
	email := "wrongcode@example.com"

	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{Email: email}, "", nil)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	code, ok := s.App.Sender.CodeFor(email)
	s.Require().True(ok)
	wrong := "000000"
	if code == wrong {
		wrong = "000001"
	}

	var errResp dto.ErrorResponse
	resp = s.postJSON("/api/v1/auth/verify", dto.VerifyRequest{Email: email, Code: wrong}, "", &errResp)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal(dto.CodeVerificationInvalid, errResp.ErrorCode)
}

func (s *Suite) TestLoginBeforePasswordSet() {
	email := "nopassword@example.com"

	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{Email: email}, "", nil)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	code, ok := s.App.Sender.CodeFor(email)
	s.Require().True(ok)
	resp = s.postJSON("/api/v1/auth/verify", dto.VerifyRequest{Email: email, Code: code}, "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var errResp dto.ErrorResponse
	resp = s.postJSON("/api/v1/auth/login",
		dto.LoginRequest{Email: email, Password: "anything-goes-1"}, "", &errResp)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal(dto.CodeInvalidCredentials, errResp.ErrorCode)
}

func (s *Suite) TestLoginUnknownEmail() {
	var errResp dto.ErrorResponse
	resp := s.postJSON("/api/v1/auth/login",
		dto.LoginRequest{Email: "ghost@example.com", Password: "whatever-123"}, "", &errResp)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal(dto.CodeInvalidCredentials, errResp.ErrorCode)
}

func (s *Suite) TestLoginWrongPassword() {
	email := "wrongpass@example.com"
	s.createVerifiedUser(email, "right-password-1")

	var errResp dto.ErrorResponse
	resp := s.postJSON("/api/v1/auth/login",
		dto.LoginRequest{Email: email, Password: "wrong-password-1"}, "", &errResp)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal(dto.CodeInvalidCredentials, errResp.ErrorCode)
}

func (s *Suite) TestMeAcceptsSessionCookie() {
	token := s.createVerifiedUser("cookie@example.com", "cookie-password-1")

	req, err := http.NewRequest(http.MethodGet, s.BaseURL+"/api/v1/auth/me", nil)
	s.Require().NoError(err)
	req.AddCookie(&http.Cookie{Name: "Authentication", Value: token})

	var me map[string]any
	resp := s.do(req, &me)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("cookie@example.com", me["email"])
}

func (s *Suite) TestMeWithoutToken() {
	var errResp dto.ErrorResponse
	resp := s.getJSON("/api/v1/auth/me", "", &errResp)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal(dto.CodeInvalidToken, errResp.ErrorCode)
}

func (s *Suite) TestUpdateNickname() {
	token := s.createVerifiedUser("rename@example.com", "rename-password-1")

	var me map[string]any
	resp := s.doJSON(http.MethodPatch, "/api/v1/users/me",
		dto.UpdateProfileRequest{Nickname: "renamed"}, token, &me)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("renamed", me["nickname"])
}
