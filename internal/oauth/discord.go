package oauth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/yhsong/finbell/internal/config"
	"github.com/yhsong/finbell/internal/domain"
)

var discordEndpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

type discordAdapter struct {
	conf        *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

// NewDiscordAdapter creates the Discord provider adapter.
func NewDiscordAdapter(cfg config.OAuthConfig) Adapter {
	return &discordAdapter{
		conf: &oauth2.Config{
			ClientID:     cfg.Discord.ClientID,
			ClientSecret: cfg.Discord.ClientSecret,
			RedirectURL:  callbackURL(cfg, domain.ProviderDiscord),
			Scopes:       []string{"identify", "email"},
			Endpoint:     discordEndpoint,
		},
		userInfoURL: "https://discord.com/api/users/@me",
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *discordAdapter) Provider() domain.Provider {
	return domain.ProviderDiscord
}

func (a *discordAdapter) AuthURL(state string) string {
	return a.conf.AuthCodeURL(state)
}

func (a *discordAdapter) ResolveCandidate(ctx context.Context, code string) (*Candidate, error) {
	tok, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("discord exchange: %w", ErrCodeExchange)
	}

	var user struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Username string `json:"username"`
	}
	if err := fetchJSON(ctx, a.httpClient, a.userInfoURL, tok.AccessToken, &user); err != nil {
		return nil, fmt.Errorf("discord userinfo: %w", ErrCodeExchange)
	}

	if user.ID == "" || user.Email == "" {
		return nil, fmt.Errorf("discord profile: %w", ErrIncompleteProfile)
	}

	return &Candidate{
		Provider:       domain.ProviderDiscord,
		ProviderUserID: user.ID,
		Email:          user.Email,
		Nickname:       user.Username,
		AccessToken:    tok.AccessToken,
		RefreshToken:   tok.RefreshToken,
	}, nil
}
