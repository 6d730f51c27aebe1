package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yhsong/finbell/internal/domain"
	"github.com/yhsong/finbell/internal/email"
	"github.com/yhsong/finbell/internal/repository"
	"github.com/yhsong/finbell/internal/utils"
)

// verificationTokenExpiry bounds how long a registration token and its
// emailed code stay valid.
const verificationTokenExpiry = 10 * time.Minute

// AuthResult is what a successful authentication produces.
type AuthResult struct {
	AccessToken string
	User        *domain.User
}

// AuthService handles registration, email verification and password login.
type AuthService struct {
	users         repository.UserRepository
	verifications repository.VerificationTokenRepository
	jwtManager    *utils.JWTManager
	sender        email.Sender
	logger        *zap.Logger
	bcryptCost    int
}

// NewAuthService creates a new auth service
func NewAuthService(
	users repository.UserRepository,
	verifications repository.VerificationTokenRepository,
	jwtManager *utils.JWTManager,
	sender email.Sender,
	logger *zap.Logger,
	bcryptCost int,
) *AuthService {
	return &AuthService{
		users:         users,
		verifications: verifications,
		jwtManager:    jwtManager,
		sender:        sender,
		logger:        logger,
		bcryptCost:    bcryptCost,
	}
}

// Register starts email registration. It creates an unverified user row if the
// email is new, issues a fresh verification token (superseding any prior one
// for the same email) and mails the 6-digit code. Returns the opaque token.
func (s *AuthService) Register(ctx context.Context, rawEmail string) (string, error) {
	emailAddr := utils.SanitizeEmail(rawEmail)

	user, err := s.users.GetByEmail(ctx, emailAddr)
	switch {
	case err == nil:
		if user.IsVerified {
			return "", ErrEmailTaken
		}
	case errors.Is(err, repository.ErrNotFound):
		user = &domain.User{
			Email:    emailAddr,
			Nickname: utils.GenerateNickname(),
		}
		if err := s.users.Create(ctx, user); err != nil {
			// A concurrent registration for the same email may win the insert.
			if !errors.Is(err, repository.ErrDuplicateEmail) {
				return "", fmt.Errorf("failed to create user: %w", err)
			}
		}
	default:
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	tokenValue, err := utils.GenerateSecureToken(32)
	if err != nil {
		return "", err
	}
	code, err := utils.GenerateVerificationCode()
	if err != nil {
		return "", err
	}

	token := &domain.VerificationToken{
		Token:     tokenValue,
		Email:     emailAddr,
		Code:      code,
		ExpiresAt: time.Now().Add(verificationTokenExpiry),
	}
	if err := s.verifications.Replace(ctx, token); err != nil {
		return "", fmt.Errorf("failed to store verification token: %w", err)
	}

	if err := s.sender.SendVerificationCode(ctx, emailAddr, code, token.ExpiresAt); err != nil {
		return "", fmt.Errorf("failed to send verification code: %w", err)
	}

	s.logger.Info("verification token issued", zap.String("email", emailAddr))
	return tokenValue, nil
}

// Verify checks the emailed code against the live verification record and
// marks the user verified. The token itself stays live so the caller can still
// set a password with it.
func (s *AuthService) Verify(ctx context.Context, rawEmail, code string) (*domain.User, error) {
	emailAddr := utils.SanitizeEmail(rawEmail)

	token, err := s.verifications.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVerificationInvalid
		}
		return nil, fmt.Errorf("failed to look up verification token: %w", err)
	}

	if token.IsExpired() {
		return nil, ErrVerificationExpired
	}
	if token.Code != code {
		return nil, ErrVerificationInvalid
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.IsVerified {
		if err := s.users.SetVerified(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to mark user verified: %w", err)
		}
		user.IsVerified = true
	}

	s.logger.Info("email verified", zap.String("user_id", user.ID))
	return user, nil
}

// SetPassword consumes a live verification token and sets the account
// password. The token is deleted afterwards; it cannot be replayed.
func (s *AuthService) SetPassword(ctx context.Context, tokenValue, password string) error {
	token, err := s.verifications.GetByToken(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrVerificationInvalid
		}
		return fmt.Errorf("failed to look up verification token: %w", err)
	}

	if token.IsExpired() {
		return ErrVerificationExpired
	}

	user, err := s.users.GetByEmail(ctx, token.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.verifications.Delete(ctx, tokenValue); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("failed to delete consumed verification token", zap.Error(err))
	}

	s.logger.Info("password set", zap.String("user_id", user.ID))
	return nil
}

// ValidateCredentials reports whether the email/password pair matches a stored
// hash. Unknown emails and passwordless accounts return false, never an error,
// and still burn one bcrypt comparison so a miss costs the same as a hit.
func (s *AuthService) ValidateCredentials(ctx context.Context, rawEmail, password string) (bool, error) {
	emailAddr := utils.SanitizeEmail(rawEmail)

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.BurnPasswordCheck(password), nil
		}
		return false, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.HasPassword() {
		return utils.BurnPasswordCheck(password), nil
	}

	return utils.CheckPasswordHash(password, *user.PasswordHash), nil
}

// Login authenticates with email/password and issues a session token. Every
// failure collapses to ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, rawEmail, password string) (*AuthResult, error) {
	emailAddr := utils.SanitizeEmail(rawEmail)

	ok, err := s.ValidateCredentials(ctx, emailAddr, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	accessToken, err := s.jwtManager.GenerateSessionToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID))
	return &AuthResult{AccessToken: accessToken, User: user}, nil
}

// GetUser retrieves a user by id.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateNickname changes a user's nickname and returns the updated user.
func (s *AuthService) UpdateNickname(ctx context.Context, userID, nickname string) (*domain.User, error) {
	if err := s.users.UpdateNickname(ctx, userID, nickname); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update nickname: %w", err)
	}
	return s.GetUser(ctx, userID)
}
