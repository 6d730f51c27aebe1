package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when trying to create a user with an existing email
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// ErrDuplicateIdentity is returned when the (provider, provider_user_id)
	// pair is already linked. Callers on the OAuth write paths treat it as
	// "identity already exists" and re-resolve to the existing owner.
	ErrDuplicateIdentity = errors.New("oauth identity already exists")

	// ErrDuplicateFavorite is returned when the (user, company) pair is already favorited
	ErrDuplicateFavorite = errors.New("favorite already exists")

	// ErrDuplicateSubscription is returned when the subscription target is already subscribed
	ErrDuplicateSubscription = errors.New("subscription already exists")
)
