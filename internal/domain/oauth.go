package domain

import "time"

// Provider identifies a supported OAuth provider.
type Provider string

const (
	ProviderGoogle  Provider = "google"
	ProviderKakao   Provider = "kakao"
	ProviderDiscord Provider = "discord"
	ProviderApple   Provider = "apple"
)

// Providers is the closed set of supported providers. There is no dynamic
// registration at runtime.
var Providers = []Provider{ProviderGoogle, ProviderKakao, ProviderDiscord, ProviderApple}

// Valid reports whether p is one of the supported providers.
func (p Provider) Valid() bool {
	switch p {
	case ProviderGoogle, ProviderKakao, ProviderDiscord, ProviderApple:
		return true
	default:
		return false
	}
}

func (p Provider) String() string {
	return string(p)
}

// OAuthIdentity links one external (provider, provider_user_id) pair to
// exactly one local user. The pair is globally unique.
type OAuthIdentity struct {
	ID             string    `json:"id" db:"id"`
	UserID         string    `json:"user_id" db:"user_id"`
	Provider       Provider  `json:"provider" db:"provider"`
	ProviderUserID string    `json:"provider_user_id" db:"provider_user_id"`
	Email          *string   `json:"email" db:"email"`
	AccessToken    *string   `json:"-" db:"access_token"`
	RefreshToken   *string   `json:"-" db:"refresh_token"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
