package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/yhsong/finbell/internal/domain"
	"github.com/yhsong/finbell/internal/repository"
)

// ErrInvalidTarget is returned for a subscription target type outside the
// known set.
var ErrInvalidTarget = errors.New("invalid subscription target type")

// SubscriptionService manages notification subscriptions and delivery
// preferences.
type SubscriptionService struct {
	subscriptions repository.SubscriptionRepository
	settings      repository.NotificationSettingRepository
	companies     repository.CompanyRepository
	indicators    repository.IndicatorRepository
	logger        *zap.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(
	subscriptions repository.SubscriptionRepository,
	settings repository.NotificationSettingRepository,
	companies repository.CompanyRepository,
	indicators repository.IndicatorRepository,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		subscriptions: subscriptions,
		settings:      settings,
		companies:     companies,
		indicators:    indicators,
		logger:        logger,
	}
}

// Subscribe subscribes the user to a company or indicator. Subscribing twice
// to the same target succeeds without creating a second row.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID string, targetType domain.SubscriptionTarget, targetID string) error {
	if !targetType.Valid() {
		return ErrInvalidTarget
	}

	var err error
	switch targetType {
	case domain.TargetCompany:
		_, err = s.companies.GetByID(ctx, targetID)
	case domain.TargetIndicator:
		_, err = s.indicators.GetByID(ctx, targetID)
	}
	if err != nil {
		return err
	}

	err = s.subscriptions.Create(ctx, &domain.Subscription{
		UserID:     userID,
		TargetType: targetType,
		TargetID:   targetID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateSubscription) {
			return nil
		}
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	s.logger.Info("subscription added",
		zap.String("user_id", userID),
		zap.String("target_type", string(targetType)),
		zap.String("target_id", targetID))
	return nil
}

// Unsubscribe removes the user's subscription to a target.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID string, targetType domain.SubscriptionTarget, targetID string) error {
	if !targetType.Valid() {
		return ErrInvalidTarget
	}
	return s.subscriptions.Delete(ctx, userID, targetType, targetID)
}

// List returns the user's subscriptions, newest first.
func (s *SubscriptionService) List(ctx context.Context, userID string) ([]*domain.Subscription, error) {
	return s.subscriptions.ListByUser(ctx, userID)
}

// GetSettings returns the user's notification setting, falling back to the
// defaults when nothing was saved yet.
func (s *SubscriptionService) GetSettings(ctx context.Context, userID string) (*domain.NotificationSetting, error) {
	setting, err := s.settings.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.DefaultNotificationSetting(userID), nil
		}
		return nil, fmt.Errorf("failed to get notification setting: %w", err)
	}
	return setting, nil
}

// UpdateSettings saves the user's notification setting.
func (s *SubscriptionService) UpdateSettings(ctx context.Context, userID string, emailEnabled bool, digestHour int) (*domain.NotificationSetting, error) {
	if digestHour < 0 || digestHour > 23 {
		return nil, fmt.Errorf("digest hour must be between 0 and 23")
	}

	setting := &domain.NotificationSetting{
		UserID:       userID,
		EmailEnabled: emailEnabled,
		DigestHour:   digestHour,
	}
	if err := s.settings.Upsert(ctx, setting); err != nil {
		return nil, err
	}
	return setting, nil
}
