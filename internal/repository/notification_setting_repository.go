package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yhsong/finbell/internal/domain"
	"github.com/yhsong/finbell/pkg/database"
)

// notificationSettingRepository implements NotificationSettingRepository interface
type notificationSettingRepository struct {
	db *database.Postgres
}

// NewNotificationSettingRepository creates a new notification setting repository
func NewNotificationSettingRepository(db *database.Postgres) NotificationSettingRepository {
	return &notificationSettingRepository{db: db}
}

// Get retrieves a user's saved notification setting
func (r *notificationSettingRepository) Get(ctx context.Context, userID string) (*domain.NotificationSetting, error) {
	query := `SELECT user_id, email_enabled, digest_hour, updated_at FROM notification_settings WHERE user_id = $1`

	setting := &domain.NotificationSetting{}
	err := r.db.DB.QueryRowContext(ctx, query, userID).Scan(
		&setting.UserID,
		&setting.EmailEnabled,
		&setting.DigestHour,
		&setting.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("notification setting not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get notification setting: %w", err)
	}

	return setting, nil
}

// Upsert saves a user's notification setting, overwriting any previous value
func (r *notificationSettingRepository) Upsert(ctx context.Context, setting *domain.NotificationSetting) error {
	setting.UpdatedAt = time.Now()

	query := `
		INSERT INTO notification_settings (user_id, email_enabled, digest_hour, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET email_enabled = EXCLUDED.email_enabled,
		    digest_hour = EXCLUDED.digest_hour,
		    updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.DB.ExecContext(ctx, query,
		setting.UserID,
		setting.EmailEnabled,
		setting.DigestHour,
		setting.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to upsert notification setting: %w", err)
	}

	return nil
}
