package acceptance

import (
	"net/http"

	"github.com/yhsong/finbell/internal/dto"
)

// Seeded by testdata/setup.sql.
const (
	seedCompanyApple    = "11111111-1111-1111-1111-111111111111"
	seedCompanyTesla    = "22222222-2222-2222-2222-222222222222"
	seedIndicatorCPI    = "33333333-3333-3333-3333-333333333333"
	seedIndicatorKRRate = "44444444-4444-4444-4444-444444444444"
)

func (s *Suite) TestListCompanies() {
	var page dto.PageResponse
	resp := s.getJSON("/api/v1/companies", "", &page)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(2, page.Total)
	s.Len(page.Items, 2)
}

func (s *Suite) TestSearchCompanies() {
	var page dto.PageResponse
	resp := s.getJSON("/api/v1/companies?search=apple", "", &page)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(1, page.Total)

	items, ok := page.Items.([]any)
	s.Require().True(ok)
	s.Require().Len(items, 1)
	company := items[0].(map[string]any)
	s.Equal("AAPL", company["symbol"])
}

func (s *Suite) TestGetCompany() {
	var company map[string]any
	resp := s.getJSON("/api/v1/companies/"+seedCompanyTesla, "", &company)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("TSLA", company["symbol"])
}

func (s *Suite) TestGetCompanyNotFound() {
	var errResp dto.ErrorResponse
	resp := s.getJSON("/api/v1/companies/99999999-9999-9999-9999-999999999999", "", &errResp)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal(dto.CodeNotFound, errResp.ErrorCode)
}

func (s *Suite) TestListIndicators() {
	var page dto.PageResponse
	resp := s.getJSON("/api/v1/indicators", "", &page)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(2, page.Total)
}

func (s *Suite) TestFavoritesFlow() {
	token := s.createVerifiedUser("favorites@example.com", "favorites-pass-1")

	resp := s.postJSON("/api/v1/favorites", dto.AddFavoriteRequest{CompanyID: seedCompanyApple}, token, nil)
	s.Equal(http.StatusCreated, resp.StatusCode)

	// Favoriting twice is a no-op, not a conflict.
	resp = s.postJSON("/api/v1/favorites", dto.AddFavoriteRequest{CompanyID: seedCompanyApple}, token, nil)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var favorites []map[string]any
	resp = s.getJSON("/api/v1/favorites", token, &favorites)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Len(favorites, 1)

	resp = s.doJSON(http.MethodDelete, "/api/v1/favorites/"+seedCompanyApple, nil, token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.getJSON("/api/v1/favorites", token, &favorites)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Empty(favorites)
}

func (s *Suite) TestFavoriteUnknownCompany() {
	token := s.createVerifiedUser("favunknown@example.com", "favunknown-pass-1")

	var errResp dto.ErrorResponse
	resp := s.postJSON("/api/v1/favorites",
		dto.AddFavoriteRequest{CompanyID: "99999999-9999-9999-9999-999999999999"}, token, &errResp)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal(dto.CodeNotFound, errResp.ErrorCode)
}

func (s *Suite) TestSubscriptionsFlow() {
	token := s.createVerifiedUser("subs@example.com", "subs-password-1")

	resp := s.postJSON("/api/v1/subscriptions",
		dto.SubscribeRequest{TargetType: "indicator", TargetID: seedIndicatorCPI}, token, nil)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var subs []map[string]any
	resp = s.getJSON("/api/v1/subscriptions", token, &subs)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Require().Len(subs, 1)
	s.Equal("indicator", subs[0]["target_type"])

	resp = s.doJSON(http.MethodDelete, "/api/v1/subscriptions/indicator/"+seedIndicatorCPI, nil, token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.getJSON("/api/v1/subscriptions", token, &subs)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Empty(subs)
}

func (s *Suite) TestNotificationSettingsDefaultsAndUpdate() {
	token := s.createVerifiedUser("settings@example.com", "settings-pass-1")

	var settings map[string]any
	resp := s.getJSON("/api/v1/notification-settings", token, &settings)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(true, settings["email_enabled"])
	s.Equal(float64(9), settings["digest_hour"])

	enabled := false
	hour := 18
	resp = s.doJSON(http.MethodPut, "/api/v1/notification-settings",
		dto.NotificationSettingsRequest{EmailEnabled: &enabled, DigestHour: &hour}, token, &settings)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(false, settings["email_enabled"])
	s.Equal(float64(18), settings["digest_hour"])

	resp = s.getJSON("/api/v1/notification-settings", token, &settings)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(false, settings["email_enabled"])
}
