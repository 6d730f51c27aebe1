package domain

import "time"

// User represents a user account. PasswordHash is nil for accounts that only
// authenticate through a linked OAuth identity.
type User struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash *string    `json:"-" db:"password_hash"`
	Nickname     string     `json:"nickname" db:"nickname"`
	IsVerified   bool       `json:"is_verified" db:"is_verified"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at" db:"last_login_at"`
}

// HasPassword reports whether the account can authenticate with email/password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// VerificationToken is a single-use, time-boxed proof of email ownership.
// Token is the opaque value returned to the caller; Code is the 6-digit value
// delivered by email.
type VerificationToken struct {
	Token     string    `json:"token" db:"token"`
	Email     string    `json:"email" db:"email"`
	Code      string    `json:"-" db:"code"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsExpired reports whether the token's validity window has passed.
func (t *VerificationToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
