package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/yhsong/finbell/internal/domain"
	"github.com/yhsong/finbell/pkg/database"
)

// oauthIdentityRepository implements OAuthIdentityRepository interface
type oauthIdentityRepository struct {
	db *database.Postgres
}

// NewOAuthIdentityRepository creates a new OAuth identity repository
func NewOAuthIdentityRepository(db *database.Postgres) OAuthIdentityRepository {
	return &oauthIdentityRepository{db: db}
}

const insertIdentityQuery = `
	INSERT INTO oauth_identities (id, user_id, provider, provider_user_id, email, access_token, refresh_token, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

func prepareIdentity(identity *domain.OAuthIdentity) {
	if identity.ID == "" {
		identity.ID = uuid.New().String()
	}
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = time.Now()
	}
}

// Create creates a new OAuth identity link
func (r *oauthIdentityRepository) Create(ctx context.Context, identity *domain.OAuthIdentity) error {
	prepareIdentity(identity)

	_, err := r.db.DB.ExecContext(ctx, insertIdentityQuery,
		identity.ID,
		identity.UserID,
		identity.Provider,
		identity.ProviderUserID,
		identity.Email,
		identity.AccessToken,
		identity.RefreshToken,
		identity.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("oauth identity already linked: %w", ErrDuplicateIdentity)
			}
		}
		return fmt.Errorf("failed to create oauth identity: %w", err)
	}

	return nil
}

// CreateWithUser inserts a user and its first identity atomically
func (r *oauthIdentityRepository) CreateWithUser(ctx context.Context, user *domain.User, identity *domain.OAuthIdentity) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	identity.UserID = user.ID
	prepareIdentity(identity)

	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	userQuery := `
		INSERT INTO users (id, email, password_hash, nickname, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := tx.ExecContext(ctx, userQuery,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Nickname,
		user.IsVerified,
		user.CreatedAt,
		user.UpdatedAt,
	); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("user with email %s already exists: %w", user.Email, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	if _, err := tx.ExecContext(ctx, insertIdentityQuery,
		identity.ID,
		identity.UserID,
		identity.Provider,
		identity.ProviderUserID,
		identity.Email,
		identity.AccessToken,
		identity.RefreshToken,
		identity.CreatedAt,
	); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("oauth identity already linked: %w", ErrDuplicateIdentity)
		}
		return fmt.Errorf("failed to create oauth identity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

const identityColumns = `id, user_id, provider, provider_user_id, email, access_token, refresh_token, created_at`

func scanIdentity(scan func(dest ...any) error) (*domain.OAuthIdentity, error) {
	identity := &domain.OAuthIdentity{}
	var email, accessToken, refreshToken sql.NullString

	err := scan(
		&identity.ID,
		&identity.UserID,
		&identity.Provider,
		&identity.ProviderUserID,
		&email,
		&accessToken,
		&refreshToken,
		&identity.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if email.Valid {
		identity.Email = &email.String
	}
	if accessToken.Valid {
		identity.AccessToken = &accessToken.String
	}
	if refreshToken.Valid {
		identity.RefreshToken = &refreshToken.String
	}

	return identity, nil
}

// GetByProvider retrieves an identity by its (provider, provider_user_id) pair
func (r *oauthIdentityRepository) GetByProvider(ctx context.Context, provider domain.Provider, providerUserID string) (*domain.OAuthIdentity, error) {
	query := `SELECT ` + identityColumns + ` FROM oauth_identities WHERE provider = $1 AND provider_user_id = $2`

	row := r.db.DB.QueryRowContext(ctx, query, provider, providerUserID)
	identity, err := scanIdentity(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("oauth identity not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get oauth identity: %w", err)
	}

	return identity, nil
}

// GetByUserID retrieves all identities linked to a user
func (r *oauthIdentityRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.OAuthIdentity, error) {
	query := `SELECT ` + identityColumns + ` FROM oauth_identities WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth identities by user id: %w", err)
	}
	defer rows.Close()

	var identities []*domain.OAuthIdentity
	for rows.Next() {
		identity, err := scanIdentity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan oauth identity: %w", err)
		}
		identities = append(identities, identity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate oauth identities: %w", err)
	}

	return identities, nil
}

// CountByUserID counts identities linked to a user
func (r *oauthIdentityRepository) CountByUserID(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM oauth_identities WHERE user_id = $1`

	var count int
	if err := r.db.DB.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count oauth identities: %w", err)
	}

	return count, nil
}

// DeleteByProvider removes one provider link from a user
func (r *oauthIdentityRepository) DeleteByProvider(ctx context.Context, userID string, provider domain.Provider) error {
	query := `DELETE FROM oauth_identities WHERE user_id = $1 AND provider = $2`

	result, err := r.db.DB.ExecContext(ctx, query, userID, provider)
	if err != nil {
		return fmt.Errorf("failed to delete oauth identity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("oauth identity for provider %s not found: %w", provider, ErrNotFound)
	}

	return nil
}
