package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yhsong/finbell/internal/domain"
	"github.com/yhsong/finbell/internal/repository"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

// In-memory fakes for the repository interfaces. They enforce the same
// uniqueness rules the schema does so the race-handling paths are exercised.

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User // by id
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		r.nextID++
		user.ID = "user-" + strconv.Itoa(r.nextID)
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) UpdateNickname(_ context.Context, userID, nickname string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Nickname = nickname
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = &passwordHash
	return nil
}

func (r *fakeUserRepo) SetVerified(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsVerified = true
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	return nil
}

type fakeIdentityRepo struct {
	mu         sync.Mutex
	identities []*domain.OAuthIdentity
	users      *fakeUserRepo
	nextID     int
}

func newFakeIdentityRepo(users *fakeUserRepo) *fakeIdentityRepo {
	return &fakeIdentityRepo{users: users}
}

func (r *fakeIdentityRepo) add(identity *domain.OAuthIdentity) error {
	for _, existing := range r.identities {
		if existing.Provider == identity.Provider && existing.ProviderUserID == identity.ProviderUserID {
			return repository.ErrDuplicateIdentity
		}
	}
	r.nextID++
	identity.ID = "identity-" + strconv.Itoa(r.nextID)
	identity.CreatedAt = time.Now()
	clone := *identity
	r.identities = append(r.identities, &clone)
	return nil
}

func (r *fakeIdentityRepo) Create(_ context.Context, identity *domain.OAuthIdentity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.add(identity)
}

func (r *fakeIdentityRepo) CreateWithUser(ctx context.Context, user *domain.User, identity *domain.OAuthIdentity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.identities {
		if existing.Provider == identity.Provider && existing.ProviderUserID == identity.ProviderUserID {
			return repository.ErrDuplicateIdentity
		}
	}
	if err := r.users.Create(ctx, user); err != nil {
		return err
	}
	identity.UserID = user.ID
	return r.add(identity)
}

func (r *fakeIdentityRepo) GetByProvider(_ context.Context, provider domain.Provider, providerUserID string) (*domain.OAuthIdentity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, identity := range r.identities {
		if identity.Provider == provider && identity.ProviderUserID == providerUserID {
			clone := *identity
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeIdentityRepo) GetByUserID(_ context.Context, userID string) ([]*domain.OAuthIdentity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.OAuthIdentity
	for _, identity := range r.identities {
		if identity.UserID == userID {
			clone := *identity
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeIdentityRepo) CountByUserID(ctx context.Context, userID string) (int, error) {
	identities, _ := r.GetByUserID(ctx, userID)
	return len(identities), nil
}

func (r *fakeIdentityRepo) DeleteByProvider(_ context.Context, userID string, provider domain.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, identity := range r.identities {
		if identity.UserID == userID && identity.Provider == provider {
			r.identities = append(r.identities[:i], r.identities[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeVerificationRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.VerificationToken // by token value
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{tokens: make(map[string]*domain.VerificationToken)}
}

func (r *fakeVerificationRepo) Replace(_ context.Context, token *domain.VerificationToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for value, existing := range r.tokens {
		if existing.Email == token.Email {
			delete(r.tokens, value)
		}
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	clone := *token
	r.tokens[token.Token] = &clone
	return nil
}

func (r *fakeVerificationRepo) GetByToken(_ context.Context, value string) (*domain.VerificationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[value]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *token
	return &clone, nil
}

func (r *fakeVerificationRepo) GetByEmail(_ context.Context, email string) (*domain.VerificationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.Email == email {
			clone := *token
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeVerificationRepo) Delete(_ context.Context, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[value]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tokens, value)
	return nil
}

// expire rewinds a token's expiry so expiry paths can be tested without waiting.
func (r *fakeVerificationRepo) expire(value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token, ok := r.tokens[value]; ok {
		token.ExpiresAt = time.Now().Add(-time.Second)
	}
}

type sentEmail struct {
	To   string
	Code string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentEmail
	fail bool
}

func (s *fakeSender) SendVerificationCode(_ context.Context, toEmail, code string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return fmt.Errorf("smtp unavailable")
	}
	s.sent = append(s.sent, sentEmail{To: toEmail, Code: code})
	return nil
}

func (s *fakeSender) last() (sentEmail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return sentEmail{}, false
	}
	return s.sent[len(s.sent)-1], true
}
