package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yhsong/finbell/internal/domain"
	"github.com/yhsong/finbell/pkg/database"
)

// verificationTokenRepository implements VerificationTokenRepository interface
type verificationTokenRepository struct {
	db *database.Postgres
}

// NewVerificationTokenRepository creates a new verification token repository
func NewVerificationTokenRepository(db *database.Postgres) VerificationTokenRepository {
	return &verificationTokenRepository{db: db}
}

// Replace deletes any existing token for the email and inserts the new one
// in a single transaction.
func (r *verificationTokenRepository) Replace(ctx context.Context, token *domain.VerificationToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM verification_tokens WHERE email = $1`, token.Email); err != nil {
		return fmt.Errorf("failed to delete stale verification tokens: %w", err)
	}

	query := `
		INSERT INTO verification_tokens (token, email, code, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.ExecContext(ctx, query,
		token.Token,
		token.Email,
		token.Code,
		token.ExpiresAt,
		token.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create verification token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

const verificationTokenColumns = `token, email, code, expires_at, created_at`

func (r *verificationTokenRepository) getBy(ctx context.Context, column, value string) (*domain.VerificationToken, error) {
	query := `SELECT ` + verificationTokenColumns + ` FROM verification_tokens WHERE ` + column + ` = $1`

	token := &domain.VerificationToken{}
	err := r.db.DB.QueryRowContext(ctx, query, value).Scan(
		&token.Token,
		&token.Email,
		&token.Code,
		&token.ExpiresAt,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("verification token not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get verification token: %w", err)
	}

	return token, nil
}

// GetByToken retrieves a verification token by its opaque value
func (r *verificationTokenRepository) GetByToken(ctx context.Context, token string) (*domain.VerificationToken, error) {
	return r.getBy(ctx, "token", token)
}

// GetByEmail retrieves the live verification token for an email
func (r *verificationTokenRepository) GetByEmail(ctx context.Context, email string) (*domain.VerificationToken, error) {
	return r.getBy(ctx, "email", email)
}

// Delete removes a verification token once consumed
func (r *verificationTokenRepository) Delete(ctx context.Context, token string) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM verification_tokens WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete verification token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("verification token not found: %w", ErrNotFound)
	}

	return nil
}
