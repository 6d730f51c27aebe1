package service

import "errors"

// Service-level errors. Handlers branch on these with errors.Is and translate
// them to stable error codes; messages never reach the wire verbatim.
var (
	// ErrInvalidCredentials covers every credential failure: unknown email,
	// passwordless account, wrong password. Callers cannot tell which.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when registering an email that already belongs
	// to a verified account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrVerificationInvalid is returned when the verification token or code
	// does not match any live record.
	ErrVerificationInvalid = errors.New("verification token or code is invalid")

	// ErrVerificationExpired is returned when the verification record exists
	// but its validity window has passed.
	ErrVerificationExpired = errors.New("verification token is expired")

	// ErrDuplicateLink is returned on the connect path when the candidate
	// identity is already linked to a different user. The connect attempt
	// fails closed; no identity is reassigned.
	ErrDuplicateLink = errors.New("oauth identity already linked to another account")

	// ErrLastAuthMethod is returned when disconnecting an identity would leave
	// the account with no password and no remaining identity.
	ErrLastAuthMethod = errors.New("cannot remove the last authentication method")

	// ErrNotLinked is returned when disconnecting a provider the user never linked.
	ErrNotLinked = errors.New("provider is not linked to this account")
)
