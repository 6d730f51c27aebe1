package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/yhsong/finbell/internal/domain"
	"github.com/yhsong/finbell/pkg/database"
)

// subscriptionRepository implements SubscriptionRepository interface
type subscriptionRepository struct {
	db *database.Postgres
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *database.Postgres) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create subscribes a user to a company or indicator
func (r *subscriptionRepository) Create(ctx context.Context, subscription *domain.Subscription) error {
	if subscription.ID == "" {
		subscription.ID = uuid.New().String()
	}
	if subscription.CreatedAt.IsZero() {
		subscription.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO subscriptions (id, user_id, target_type, target_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.DB.ExecContext(ctx, query,
		subscription.ID,
		subscription.UserID,
		subscription.TargetType,
		subscription.TargetID,
		subscription.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return fmt.Errorf("already subscribed to %s %s: %w", subscription.TargetType, subscription.TargetID, ErrDuplicateSubscription)
		}
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

// Delete removes a user's subscription to a target
func (r *subscriptionRepository) Delete(ctx context.Context, userID string, targetType domain.SubscriptionTarget, targetID string) error {
	query := `DELETE FROM subscriptions WHERE user_id = $1 AND target_type = $2 AND target_id = $3`

	result, err := r.db.DB.ExecContext(ctx, query, userID, targetType, targetID)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("subscription not found: %w", ErrNotFound)
	}

	return nil
}

// ListByUser returns a user's subscriptions, newest first
func (r *subscriptionRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Subscription, error) {
	query := `SELECT id, user_id, target_type, target_id, created_at FROM subscriptions WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subscriptions []*domain.Subscription
	for rows.Next() {
		subscription := &domain.Subscription{}
		if err := rows.Scan(
			&subscription.ID,
			&subscription.UserID,
			&subscription.TargetType,
			&subscription.TargetID,
			&subscription.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subscriptions = append(subscriptions, subscription)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}

	return subscriptions, nil
}
