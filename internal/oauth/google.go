package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/yhsong/finbell/internal/config"
	"github.com/yhsong/finbell/internal/domain"
)

type googleAdapter struct {
	conf        *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

// NewGoogleAdapter creates the Google provider adapter.
func NewGoogleAdapter(cfg config.OAuthConfig) Adapter {
	return &googleAdapter{
		conf: &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  callbackURL(cfg, domain.ProviderGoogle),
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *googleAdapter) Provider() domain.Provider {
	return domain.ProviderGoogle
}

func (a *googleAdapter) AuthURL(state string) string {
	return a.conf.AuthCodeURL(state)
}

func (a *googleAdapter) ResolveCandidate(ctx context.Context, code string) (*Candidate, error) {
	tok, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google exchange: %w", ErrCodeExchange)
	}

	var user struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := fetchJSON(ctx, a.httpClient, a.userInfoURL, tok.AccessToken, &user); err != nil {
		return nil, fmt.Errorf("google userinfo: %w", ErrCodeExchange)
	}

	if user.ID == "" || user.Email == "" {
		return nil, fmt.Errorf("google profile: %w", ErrIncompleteProfile)
	}

	return &Candidate{
		Provider:       domain.ProviderGoogle,
		ProviderUserID: user.ID,
		Email:          user.Email,
		Nickname:       user.Name,
		AccessToken:    tok.AccessToken,
		RefreshToken:   tok.RefreshToken,
	}, nil
}

func fetchJSON(ctx context.Context, client *http.Client, url, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
