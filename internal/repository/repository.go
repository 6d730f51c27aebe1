package repository

import (
	"github.com/yhsong/finbell/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User                UserRepository
	OAuthIdentity       OAuthIdentityRepository
	VerificationToken   VerificationTokenRepository
	Company             CompanyRepository
	Indicator           IndicatorRepository
	Favorite            FavoriteRepository
	Subscription        SubscriptionRepository
	NotificationSetting NotificationSettingRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		User:                NewUserRepository(db),
		OAuthIdentity:       NewOAuthIdentityRepository(db),
		VerificationToken:   NewVerificationTokenRepository(db),
		Company:             NewCompanyRepository(db),
		Indicator:           NewIndicatorRepository(db),
		Favorite:            NewFavoriteRepository(db),
		Subscription:        NewSubscriptionRepository(db),
		NotificationSetting: NewNotificationSettingRepository(db),
	}
}
