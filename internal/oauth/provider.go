package oauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/yhsong/finbell/internal/config"
	"github.com/yhsong/finbell/internal/domain"
)

// OAuth adapter errors
var (
	// ErrUnknownProvider is returned when the requested provider name is not
	// in the registry.
	ErrUnknownProvider = errors.New("unknown oauth provider")

	// ErrIncompleteProfile is returned when a provider responds without the
	// fields identity resolution needs (a stable user id and an email).
	ErrIncompleteProfile = errors.New("oauth profile missing id or email")

	// ErrCodeExchange is returned when exchanging the authorization code or
	// fetching the profile fails upstream.
	ErrCodeExchange = errors.New("oauth code exchange failed")
)

// Candidate is the normalized profile an adapter extracts from a provider.
// ProviderUserID and Email are always set; Nickname may be empty.
type Candidate struct {
	Provider       domain.Provider
	ProviderUserID string
	Email          string
	Nickname       string
	AccessToken    string
	RefreshToken   string
}

// Adapter is implemented once per provider. Adapters translate the provider's
// wire formats into a Candidate and never touch storage.
type Adapter interface {
	Provider() domain.Provider

	// AuthURL builds the provider authorization URL carrying the given
	// state token.
	AuthURL(state string) string

	// ResolveCandidate exchanges the authorization code and fetches the
	// normalized profile.
	ResolveCandidate(ctx context.Context, code string) (*Candidate, error)
}

func callbackURL(cfg config.OAuthConfig, provider domain.Provider) string {
	return fmt.Sprintf("%s/auth/oauth/%s/callback", cfg.CallbackBaseURL, provider)
}
