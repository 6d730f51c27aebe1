package acceptance

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/stretchr/testify/suite"

	"github.com/yhsong/finbell/pkg/database"
)

const (
	defaultPostgresDSN = "host=localhost port=5432 user=finbell password=finbell_password dbname=finbell_test sslmode=disable"
	defaultRedisAddr   = "localhost:6379"
)

// Suite is the base acceptance suite. It provisions the schema from
// testdata/setup.sql, boots an app instance on a random port and wipes
// user-owned rows between tests. Requires local Postgres and Redis.
type Suite struct {
	suite.Suite
	Postgres *database.Postgres
	Redis    *database.Redis
	App      *TestApp
	BaseURL  string
	client   *http.Client
}

func (s *Suite) SetupSuite() {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	redisAddr := os.Getenv("TEST_REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = defaultRedisAddr
	}

	postgres, err := database.NewPostgres(dsn)
	s.Require().NoError(err, "failed to connect to test database")
	s.Postgres = postgres

	redis, err := database.NewRedis(redisAddr, "", 1)
	s.Require().NoError(err, "failed to connect to test redis")
	s.Redis = redis

	s.executeSQLFile("testdata/setup.sql")

	app, err := NewTestApp(postgres, redis)
	s.Require().NoError(err, "failed to start test application")
	s.App = app
	s.BaseURL = app.BaseURL

	// Redirect-flow assertions need the raw 302, not the followed target.
	s.client = &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (s *Suite) TearDownSuite() {
	if s.App != nil {
		s.NoError(s.App.Close())
	}
	if s.Postgres != nil {
		s.NoError(s.Postgres.Close())
	}
	if s.Redis != nil {
		s.NoError(s.Redis.Close())
	}
}

func (s *Suite) SetupTest() {
	s.executeSQLFile("testdata/cleanup.sql")
	s.Require().NoError(s.Redis.Client.FlushDB(context.Background()).Err())
}

func (s *Suite) executeSQLFile(path string) {
	content, err := os.ReadFile(path)
	s.Require().NoError(err, "failed to read SQL file %s", path)

	_, err = s.Postgres.DB.Exec(string(content))
	s.Require().NoError(err, "failed to execute SQL file %s", path)
}

// doJSON sends a JSON request and decodes the response body into out when
// out is non-nil. Pass an empty token for anonymous requests.
func (s *Suite) doJSON(method, path string, body any, token string, out any) *http.Response {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, s.BaseURL+path, reader)
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return s.do(req, out)
}

func (s *Suite) postJSON(path string, body any, token string, out any) *http.Response {
	return s.doJSON(http.MethodPost, path, body, token, out)
}

func (s *Suite) getJSON(path, token string, out any) *http.Response {
	return s.doJSON(http.MethodGet, path, nil, token, out)
}

func (s *Suite) do(req *http.Request, out any) *http.Response {
	resp, err := s.client.Do(req)
	s.Require().NoError(err)

	if out != nil {
		defer resp.Body.Close()
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(out),
			"failed to decode response from %s", req.URL.Path)
	} else {
		resp.Body.Close()
	}

	return resp
}
