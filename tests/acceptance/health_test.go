package acceptance

import "net/http"

func (s *Suite) TestHealthEndpoint() {
	var body map[string]any
	resp := s.getJSON("/health", "", &body)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("pass", body["status"])
}

func (s *Suite) TestMetricsEndpoint() {
	resp := s.getJSON("/metrics", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
}
