package repository

import (
	"context"

	"github.com/yhsong/finbell/internal/domain"
)

// UserRepository defines methods for user operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdateNickname(ctx context.Context, userID, nickname string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	SetVerified(ctx context.Context, userID string) error
	UpdateLastLogin(ctx context.Context, userID string) error
}

// OAuthIdentityRepository defines methods for linked external identities
type OAuthIdentityRepository interface {
	Create(ctx context.Context, identity *domain.OAuthIdentity) error
	// CreateWithUser inserts the user and its first identity in one
	// transaction so a failed link never leaves an orphaned user row.
	CreateWithUser(ctx context.Context, user *domain.User, identity *domain.OAuthIdentity) error
	GetByProvider(ctx context.Context, provider domain.Provider, providerUserID string) (*domain.OAuthIdentity, error)
	GetByUserID(ctx context.Context, userID string) ([]*domain.OAuthIdentity, error)
	CountByUserID(ctx context.Context, userID string) (int, error)
	DeleteByProvider(ctx context.Context, userID string, provider domain.Provider) error
}

// VerificationTokenRepository stores email verification tokens. At most one
// live token exists per email; Replace deletes older tokens in the same
// transaction as the insert.
type VerificationTokenRepository interface {
	Replace(ctx context.Context, token *domain.VerificationToken) error
	GetByToken(ctx context.Context, token string) (*domain.VerificationToken, error)
	GetByEmail(ctx context.Context, email string) (*domain.VerificationToken, error)
	Delete(ctx context.Context, token string) error
}

// CompanyRepository defines read access to company data
type CompanyRepository interface {
	List(ctx context.Context, search string, limit, offset int) ([]*domain.Company, int, error)
	GetByID(ctx context.Context, id string) (*domain.Company, error)
}

// IndicatorRepository defines read access to economic indicator data
type IndicatorRepository interface {
	List(ctx context.Context, limit, offset int) ([]*domain.EconomicIndicator, int, error)
	GetByID(ctx context.Context, id string) (*domain.EconomicIndicator, error)
}

// FavoriteRepository defines methods for favorites
type FavoriteRepository interface {
	Create(ctx context.Context, favorite *domain.Favorite) error
	Delete(ctx context.Context, userID, companyID string) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Favorite, error)
}

// SubscriptionRepository defines methods for subscriptions
type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *domain.Subscription) error
	Delete(ctx context.Context, userID string, targetType domain.SubscriptionTarget, targetID string) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Subscription, error)
}

// NotificationSettingRepository defines methods for delivery preferences
type NotificationSettingRepository interface {
	Get(ctx context.Context, userID string) (*domain.NotificationSetting, error)
	Upsert(ctx context.Context, setting *domain.NotificationSetting) error
}
