package domain

import "time"

// Company is a listed company users can browse and favorite.
type Company struct {
	ID        string    `json:"id" db:"id"`
	Symbol    string    `json:"symbol" db:"symbol"`
	Name      string    `json:"name" db:"name"`
	Market    string    `json:"market" db:"market"`
	Sector    *string   `json:"sector" db:"sector"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EconomicIndicator is a macro data series users can browse and subscribe to.
type EconomicIndicator struct {
	ID          string     `json:"id" db:"id"`
	Code        string     `json:"code" db:"code"`
	Name        string     `json:"name" db:"name"`
	Country     string     `json:"country" db:"country"`
	Unit        *string    `json:"unit" db:"unit"`
	LatestValue *float64   `json:"latest_value" db:"latest_value"`
	ReleasedAt  *time.Time `json:"released_at" db:"released_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Favorite marks a company as favorited by a user. (user_id, company_id) is unique.
type Favorite struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	CompanyID string    `json:"company_id" db:"company_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SubscriptionTarget is the kind of object a subscription points at.
type SubscriptionTarget string

const (
	TargetCompany   SubscriptionTarget = "company"
	TargetIndicator SubscriptionTarget = "indicator"
)

// Valid reports whether t is a known subscription target kind.
func (t SubscriptionTarget) Valid() bool {
	return t == TargetCompany || t == TargetIndicator
}

// Subscription subscribes a user to notifications about a company or indicator.
// (user_id, target_type, target_id) is unique.
type Subscription struct {
	ID         string             `json:"id" db:"id"`
	UserID     string             `json:"user_id" db:"user_id"`
	TargetType SubscriptionTarget `json:"target_type" db:"target_type"`
	TargetID   string             `json:"target_id" db:"target_id"`
	CreatedAt  time.Time          `json:"created_at" db:"created_at"`
}
