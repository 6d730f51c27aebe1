package oauth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/kakao"

	"github.com/yhsong/finbell/internal/config"
	"github.com/yhsong/finbell/internal/domain"
)

type kakaoAdapter struct {
	conf        *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

// NewKakaoAdapter creates the Kakao provider adapter.
func NewKakaoAdapter(cfg config.OAuthConfig) Adapter {
	return &kakaoAdapter{
		conf: &oauth2.Config{
			ClientID:     cfg.Kakao.ClientID,
			ClientSecret: cfg.Kakao.ClientSecret,
			RedirectURL:  callbackURL(cfg, domain.ProviderKakao),
			Scopes:       []string{"account_email", "profile_nickname"},
			Endpoint:     kakao.Endpoint,
		},
		userInfoURL: "https://kapi.kakao.com/v2/user/me",
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *kakaoAdapter) Provider() domain.Provider {
	return domain.ProviderKakao
}

func (a *kakaoAdapter) AuthURL(state string) string {
	return a.conf.AuthCodeURL(state)
}

func (a *kakaoAdapter) ResolveCandidate(ctx context.Context, code string) (*Candidate, error) {
	tok, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("kakao exchange: %w", ErrCodeExchange)
	}

	// Kakao numbers the account id and nests email under kakao_account.
	var user struct {
		ID           int64 `json:"id"`
		KakaoAccount struct {
			Email   string `json:"email"`
			Profile struct {
				Nickname string `json:"nickname"`
			} `json:"profile"`
		} `json:"kakao_account"`
	}
	if err := fetchJSON(ctx, a.httpClient, a.userInfoURL, tok.AccessToken, &user); err != nil {
		return nil, fmt.Errorf("kakao userinfo: %w", ErrCodeExchange)
	}

	if user.ID == 0 || user.KakaoAccount.Email == "" {
		return nil, fmt.Errorf("kakao profile: %w", ErrIncompleteProfile)
	}

	return &Candidate{
		Provider:       domain.ProviderKakao,
		ProviderUserID: strconv.FormatInt(user.ID, 10),
		Email:          user.KakaoAccount.Email,
		Nickname:       user.KakaoAccount.Profile.Nickname,
		AccessToken:    tok.AccessToken,
		RefreshToken:   tok.RefreshToken,
	}, nil
}
