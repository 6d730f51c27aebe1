package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yhsong/finbell/internal/domain"
	"github.com/yhsong/finbell/internal/oauth"
	"github.com/yhsong/finbell/internal/utils"
)

// fakeAdapter resolves every code to a fixed candidate.
type fakeAdapter struct {
	provider  domain.Provider
	candidate *oauth.Candidate
	err       error
}

func (a *fakeAdapter) Provider() domain.Provider { return a.provider }

func (a *fakeAdapter) AuthURL(state string) string {
	return "https://provider.example/authorize?state=" + state
}

func (a *fakeAdapter) ResolveCandidate(context.Context, string) (*oauth.Candidate, error) {
	if a.err != nil {
		return nil, a.err
	}
	clone := *a.candidate
	return &clone, nil
}

type fakeRegistry struct {
	adapters map[domain.Provider]oauth.Adapter
}

func (r *fakeRegistry) Lookup(name string) (oauth.Adapter, error) {
	adapter, ok := r.adapters[domain.Provider(name)]
	if !ok {
		return nil, oauth.ErrUnknownProvider
	}
	return adapter, nil
}

type oauthFixture struct {
	svc        *OAuthService
	users      *fakeUserRepo
	identities *fakeIdentityRepo
	jwt        *utils.JWTManager
	adapter    *fakeAdapter
}

func newOAuthFixture(t *testing.T) *oauthFixture {
	t.Helper()

	users := newFakeUserRepo()
	identities := newFakeIdentityRepo(users)
	jwtManager := utils.NewJWTManager(testJWTSecret, time.Hour)

	adapter := &fakeAdapter{
		provider: domain.ProviderGoogle,
		candidate: &oauth.Candidate{
			Provider:       domain.ProviderGoogle,
			ProviderUserID: "google-123",
			Email:          "oauth@x.com",
			Nickname:       "Google User",
			AccessToken:    "upstream-token",
		},
	}
	registry := &fakeRegistry{adapters: map[domain.Provider]oauth.Adapter{
		domain.ProviderGoogle: adapter,
	}}

	return &oauthFixture{
		svc:        NewOAuthService(registry, users, identities, jwtManager, testLogger()),
		users:      users,
		identities: identities,
		jwt:        jwtManager,
		adapter:    adapter,
	}
}

func TestHandleCallbackUnknownProvider(t *testing.T) {
	f := newOAuthFixture(t)

	_, err := f.svc.HandleCallback(context.Background(), "github", "code", "")
	assert.ErrorIs(t, err, oauth.ErrUnknownProvider)
}

func TestLoginCreatesUserAndIdentity(t *testing.T) {
	f := newOAuthFixture(t)
	ctx := context.Background()

	result, err := f.svc.HandleCallback(ctx, "google", "code", "")
	require.NoError(t, err)

	assert.Equal(t, CallbackLogin, result.Kind)
	require.NotNil(t, result.User)
	assert.Equal(t, "oauth@x.com", result.User.Email)
	assert.True(t, result.User.IsVerified)
	assert.False(t, result.User.HasPassword())

	claims, err := f.jwt.VerifySessionToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)

	identity, err := f.identities.GetByProvider(ctx, domain.ProviderGoogle, "google-123")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, identity.UserID)
}

func TestLoginIsIdempotentForSameExternalID(t *testing.T) {
	f := newOAuthFixture(t)
	ctx := context.Background()

	first, err := f.svc.HandleCallback(ctx, "google", "code", "")
	require.NoError(t, err)
	second, err := f.svc.HandleCallback(ctx, "google", "code", "")
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)

	count, err := f.identities.CountByUserID(ctx, first.User.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "exactly one identity row must exist after repeated callbacks")
}

func TestLoginMergesByEmailWithoutLinking(t *testing.T) {
	f := newOAuthFixture(t)
	ctx := context.Background()

	hash, err := utils.HashPassword("Sup3rSecret", 4)
	require.NoError(t, err)
	existing := &domain.User{Email: "oauth@x.com", Nickname: "existing", PasswordHash: &hash, IsVerified: true}
	require.NoError(t, f.users.Create(ctx, existing))

	result, err := f.svc.HandleCallback(ctx, "google", "code", "")
	require.NoError(t, err)

	assert.Equal(t, existing.ID, result.User.ID)

	// The merge shortcut issues a session but leaves linking to the connect flow.
	_, err = f.identities.GetByProvider(ctx, domain.ProviderGoogle, "google-123")
	assert.Error(t, err)
}

func TestConnectLinksIdentityToStateUser(t *testing.T) {
	f := newOAuthFixture(t)
	ctx := context.Background()

	owner := &domain.User{Email: "owner@x.com", Nickname: "owner", IsVerified: true}
	require.NoError(t, f.users.Create(ctx, owner))

	state, err := f.jwt.GenerateConnectToken(owner.ID, domain.ProviderGoogle)
	require.NoError(t, err)

	result, err := f.svc.HandleCallback(ctx, "google", "code", state)
	require.NoError(t, err)

	assert.Equal(t, CallbackConnect, result.Kind)
	assert.Empty(t, result.AccessToken, "connect must not mint a new session")
	assert.NotEmpty(t, result.Message)

	identity, err := f.identities.GetByProvider(ctx, domain.ProviderGoogle, "google-123")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, identity.UserID)
}

func TestConnectFailsClosedOnForeignIdentity(t *testing.T) {
	f := newOAuthFixture(t)
	ctx := context.Background()

	// The candidate identity already belongs to another account.
	other, err := f.svc.HandleCallback(ctx, "google", "code", "")
	require.NoError(t, err)

	victim := &domain.User{Email: "victim@x.com", Nickname: "victim", IsVerified: true}
	require.NoError(t, f.users.Create(ctx, victim))

	state, err := f.jwt.GenerateConnectToken(victim.ID, domain.ProviderGoogle)
	require.NoError(t, err)

	_, err = f.svc.HandleCallback(ctx, "google", "code", state)
	assert.ErrorIs(t, err, ErrDuplicateLink)

	// Neither user's identity set changed.
	identity, err := f.identities.GetByProvider(ctx, domain.ProviderGoogle, "google-123")
	require.NoError(t, err)
	assert.Equal(t, other.User.ID, identity.UserID)

	count, err := f.identities.CountByUserID(ctx, victim.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestConnectRejectsProviderMismatch(t *testing.T) {
	f := newOAuthFixture(t)
	ctx := context.Background()

	owner := &domain.User{Email: "owner@x.com", Nickname: "owner", IsVerified: true}
	require.NoError(t, f.users.Create(ctx, owner))

	// State minted for kakao, callback arriving from google.
	state, err := f.jwt.GenerateConnectToken(owner.ID, domain.ProviderKakao)
	require.NoError(t, err)

	_, err = f.svc.HandleCallback(ctx, "google", "code", state)
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
}

func TestConnectExpiredState(t *testing.T) {
	f := newOAuthFixture(t)
	ctx := context.Background()

	owner := &domain.User{Email: "owner@x.com", Nickname: "owner", IsVerified: true}
	require.NoError(t, f.users.Create(ctx, owner))

	state := expiredConnectToken(t, owner.ID)
	_, err := f.svc.HandleCallback(ctx, "google", "code", state)
	assert.ErrorIs(t, err, utils.ErrTokenExpired)
}

// expiredConnectToken signs a connect-state token whose window has already passed.
func expiredConnectToken(t *testing.T, userID string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"oauthMethod": "connect",
		"userId":      userID,
		"provider":    "google",
		"iat":         time.Now().Add(-10 * time.Minute).Unix(),
		"exp":         time.Now().Add(-5 * time.Minute).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func TestConnectURLRequiresKnownProvider(t *testing.T) {
	f := newOAuthFixture(t)
	ctx := context.Background()

	owner := &domain.User{Email: "owner@x.com", Nickname: "owner", IsVerified: true}
	require.NoError(t, f.users.Create(ctx, owner))

	_, err := f.svc.ConnectURL(ctx, owner.ID, "github")
	assert.ErrorIs(t, err, oauth.ErrUnknownProvider)

	url, err := f.svc.ConnectURL(ctx, owner.ID, "google")
	require.NoError(t, err)
	assert.Contains(t, url, "state=")
}

func TestDisconnectGuardsLastAuthMethod(t *testing.T) {
	f := newOAuthFixture(t)
	ctx := context.Background()

	// OAuth-only account with a single linked identity.
	result, err := f.svc.HandleCallback(ctx, "google", "code", "")
	require.NoError(t, err)

	err = f.svc.Disconnect(ctx, result.User.ID, "google")
	assert.ErrorIs(t, err, ErrLastAuthMethod)

	// Once a password exists the identity can go.
	hash, err := utils.HashPassword("Sup3rSecret", 4)
	require.NoError(t, err)
	require.NoError(t, f.users.UpdatePassword(ctx, result.User.ID, hash))

	require.NoError(t, f.svc.Disconnect(ctx, result.User.ID, "google"))

	count, err := f.identities.CountByUserID(ctx, result.User.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDisconnectNotLinked(t *testing.T) {
	f := newOAuthFixture(t)
	ctx := context.Background()

	hash, err := utils.HashPassword("Sup3rSecret", 4)
	require.NoError(t, err)
	user := &domain.User{Email: "a@x.com", Nickname: "a", PasswordHash: &hash, IsVerified: true}
	require.NoError(t, f.users.Create(ctx, user))

	err = f.svc.Disconnect(ctx, user.ID, "google")
	assert.ErrorIs(t, err, ErrNotLinked)
}
