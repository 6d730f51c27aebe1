package domain

// SessionClaims are the decoded claims of a session token.
type SessionClaims struct {
	UserID   string `json:"sub"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// ConnectClaims are the decoded claims of a connect-state token, minted when
// an authenticated user starts linking an additional OAuth identity.
type ConnectClaims struct {
	OAuthMethod string   `json:"oauthMethod"`
	UserID      string   `json:"userId"`
	Provider    Provider `json:"provider"`
}
