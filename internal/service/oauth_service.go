package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/yhsong/finbell/internal/domain"
	"github.com/yhsong/finbell/internal/oauth"
	"github.com/yhsong/finbell/internal/repository"
	"github.com/yhsong/finbell/internal/utils"
)

// CallbackKind says which flow a callback resolved to.
type CallbackKind string

const (
	// CallbackLogin means a session token was issued for a (possibly new) user.
	CallbackLogin CallbackKind = "login"
	// CallbackConnect means an identity was linked to the authenticated user;
	// the existing session stays authoritative and no new token is issued.
	CallbackConnect CallbackKind = "connect"
)

// CallbackResult is the outcome of a provider callback.
type CallbackResult struct {
	Kind        CallbackKind
	AccessToken string
	User        *domain.User
	Message     string
}

// ProviderRegistry resolves provider names to adapters. Satisfied by
// *oauth.Registry.
type ProviderRegistry interface {
	Lookup(name string) (oauth.Adapter, error)
}

// OAuthService drives the provider handshakes and the identity resolution and
// linking decisions behind them.
type OAuthService struct {
	registry   ProviderRegistry
	users      repository.UserRepository
	identities repository.OAuthIdentityRepository
	jwtManager *utils.JWTManager
	logger     *zap.Logger
}

// NewOAuthService creates a new OAuth service
func NewOAuthService(
	registry ProviderRegistry,
	users repository.UserRepository,
	identities repository.OAuthIdentityRepository,
	jwtManager *utils.JWTManager,
	logger *zap.Logger,
) *OAuthService {
	return &OAuthService{
		registry:   registry,
		users:      users,
		identities: identities,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// AuthorizationURL builds the consent-screen URL for a login flow. state is
// empty for plain logins and carries the connect-state token for link flows.
func (s *OAuthService) AuthorizationURL(providerName, state string) (string, error) {
	adapter, err := s.registry.Lookup(providerName)
	if err != nil {
		return "", err
	}
	return adapter.AuthURL(state), nil
}

// ConnectURL mints a connect-state token for the authenticated user and
// returns the consent-screen URL carrying it.
func (s *OAuthService) ConnectURL(ctx context.Context, userID, providerName string) (string, error) {
	adapter, err := s.registry.Lookup(providerName)
	if err != nil {
		return "", err
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	state, err := s.jwtManager.GenerateConnectToken(userID, adapter.Provider())
	if err != nil {
		return "", err
	}
	return adapter.AuthURL(state), nil
}

// HandleCallback resolves a provider callback. A non-empty state means the
// connect flow; otherwise the login flow runs its three-way branch.
func (s *OAuthService) HandleCallback(ctx context.Context, providerName, code, state string) (*CallbackResult, error) {
	adapter, err := s.registry.Lookup(providerName)
	if err != nil {
		return nil, err
	}

	candidate, err := adapter.ResolveCandidate(ctx, code)
	if err != nil {
		return nil, err
	}

	if state != "" {
		return s.handleConnect(ctx, candidate, state)
	}
	return s.handleLogin(ctx, candidate)
}

// handleLogin runs find-by-external-id, then find-by-email, then create.
func (s *OAuthService) handleLogin(ctx context.Context, candidate *oauth.Candidate) (*CallbackResult, error) {
	identity, err := s.identities.GetByProvider(ctx, candidate.Provider, candidate.ProviderUserID)
	switch {
	case err == nil:
		user, err := s.users.GetByID(ctx, identity.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to load identity owner: %w", err)
		}
		return s.loginResult(ctx, user)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to look up oauth identity: %w", err)
	}

	user, err := s.users.GetByEmail(ctx, utils.SanitizeEmail(candidate.Email))
	switch {
	case err == nil:
		// Merge by email: the account exists under this address, with or
		// without a password. The identity row is only written through an
		// explicit connect flow.
		return s.loginResult(ctx, user)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}

	return s.createFromCandidate(ctx, candidate)
}

func (s *OAuthService) createFromCandidate(ctx context.Context, candidate *oauth.Candidate) (*CallbackResult, error) {
	nickname := candidate.Nickname
	if nickname == "" {
		nickname = utils.GenerateNickname()
	}

	user := &domain.User{
		Email:      utils.SanitizeEmail(candidate.Email),
		Nickname:   nickname,
		IsVerified: true,
	}

	err := s.identities.CreateWithUser(ctx, user, identityFromCandidate(candidate))
	if err != nil {
		// A double-submitted callback may have created the identity first.
		// Re-resolve to the existing owner instead of surfacing the conflict.
		if errors.Is(err, repository.ErrDuplicateIdentity) || errors.Is(err, repository.ErrDuplicateEmail) {
			s.logger.Info("concurrent oauth signup, re-resolving",
				zap.String("provider", candidate.Provider.String()))
			return s.handleLogin(ctx, candidate)
		}
		return nil, fmt.Errorf("failed to create user from oauth identity: %w", err)
	}

	s.logger.Info("user created from oauth identity",
		zap.String("user_id", user.ID),
		zap.String("provider", candidate.Provider.String()))
	return s.loginResult(ctx, user)
}

// handleConnect links the candidate identity onto the user named by the
// connect-state token. If the identity already belongs to someone else the
// attempt fails closed; nothing is reassigned.
func (s *OAuthService) handleConnect(ctx context.Context, candidate *oauth.Candidate, state string) (*CallbackResult, error) {
	claims, err := s.jwtManager.VerifyConnectToken(state)
	if err != nil {
		return nil, err
	}
	if claims.Provider != candidate.Provider {
		return nil, utils.ErrInvalidToken
	}

	existing, err := s.identities.GetByProvider(ctx, candidate.Provider, candidate.ProviderUserID)
	switch {
	case err == nil:
		if existing.UserID != claims.UserID {
			return nil, ErrDuplicateLink
		}
		// Already linked to this user; treat as success.
		return &CallbackResult{Kind: CallbackConnect, Message: connectedMessage(candidate.Provider)}, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to look up oauth identity: %w", err)
	}

	if _, err := s.users.GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	identity := identityFromCandidate(candidate)
	identity.UserID = claims.UserID
	if err := s.identities.Create(ctx, identity); err != nil {
		if errors.Is(err, repository.ErrDuplicateIdentity) {
			// Lost a race for this identity. Resolve the winner and keep the
			// fail-closed rule.
			winner, lookupErr := s.identities.GetByProvider(ctx, candidate.Provider, candidate.ProviderUserID)
			if lookupErr == nil && winner.UserID == claims.UserID {
				return &CallbackResult{Kind: CallbackConnect, Message: connectedMessage(candidate.Provider)}, nil
			}
			return nil, ErrDuplicateLink
		}
		return nil, fmt.Errorf("failed to link oauth identity: %w", err)
	}

	s.logger.Info("oauth identity linked",
		zap.String("user_id", claims.UserID),
		zap.String("provider", candidate.Provider.String()))
	return &CallbackResult{Kind: CallbackConnect, Message: connectedMessage(candidate.Provider)}, nil
}

// ListIdentities returns the identities linked to a user.
func (s *OAuthService) ListIdentities(ctx context.Context, userID string) ([]*domain.OAuthIdentity, error) {
	identities, err := s.identities.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list oauth identities: %w", err)
	}
	return identities, nil
}

// Disconnect removes one provider link. Refused when it would leave the
// account with no password and no remaining identity.
func (s *OAuthService) Disconnect(ctx context.Context, userID, providerName string) error {
	adapter, err := s.registry.Lookup(providerName)
	if err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	count, err := s.identities.CountByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to count oauth identities: %w", err)
	}
	if !user.HasPassword() && count <= 1 {
		return ErrLastAuthMethod
	}

	if err := s.identities.DeleteByProvider(ctx, userID, adapter.Provider()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotLinked
		}
		return fmt.Errorf("failed to delete oauth identity: %w", err)
	}

	s.logger.Info("oauth identity disconnected",
		zap.String("user_id", userID),
		zap.String("provider", providerName))
	return nil
}

func (s *OAuthService) loginResult(ctx context.Context, user *domain.User) (*CallbackResult, error) {
	accessToken, err := s.jwtManager.GenerateSessionToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	return &CallbackResult{Kind: CallbackLogin, AccessToken: accessToken, User: user}, nil
}

func identityFromCandidate(candidate *oauth.Candidate) *domain.OAuthIdentity {
	identity := &domain.OAuthIdentity{
		Provider:       candidate.Provider,
		ProviderUserID: candidate.ProviderUserID,
	}
	if candidate.Email != "" {
		email := utils.SanitizeEmail(candidate.Email)
		identity.Email = &email
	}
	if candidate.AccessToken != "" {
		identity.AccessToken = &candidate.AccessToken
	}
	if candidate.RefreshToken != "" {
		identity.RefreshToken = &candidate.RefreshToken
	}
	return identity
}

func connectedMessage(provider domain.Provider) string {
	return fmt.Sprintf("%s account connected", provider)
}
