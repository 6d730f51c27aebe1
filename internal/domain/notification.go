package domain

import "time"

// NotificationSetting holds a user's delivery preferences. One row per user;
// a missing row means defaults (email enabled, digest at 09:00).
type NotificationSetting struct {
	UserID       string    `json:"user_id" db:"user_id"`
	EmailEnabled bool      `json:"email_enabled" db:"email_enabled"`
	DigestHour   int       `json:"digest_hour" db:"digest_hour"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultNotificationSetting returns the defaults applied before a user saves
// any preference.
func DefaultNotificationSetting(userID string) *NotificationSetting {
	return &NotificationSetting{
		UserID:       userID,
		EmailEnabled: true,
		DigestHour:   9,
	}
}
