package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/yhsong/finbell/internal/domain"
	"github.com/yhsong/finbell/pkg/database"
)

// favoriteRepository implements FavoriteRepository interface
type favoriteRepository struct {
	db *database.Postgres
}

// NewFavoriteRepository creates a new favorite repository
func NewFavoriteRepository(db *database.Postgres) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// Create marks a company as favorited by a user
func (r *favoriteRepository) Create(ctx context.Context, favorite *domain.Favorite) error {
	if favorite.ID == "" {
		favorite.ID = uuid.New().String()
	}
	if favorite.CreatedAt.IsZero() {
		favorite.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO favorites (id, user_id, company_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.DB.ExecContext(ctx, query,
		favorite.ID,
		favorite.UserID,
		favorite.CompanyID,
		favorite.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				return fmt.Errorf("company already favorited: %w", ErrDuplicateFavorite)
			case "23503": // foreign_key_violation
				return fmt.Errorf("company with id %s not found: %w", favorite.CompanyID, ErrNotFound)
			}
		}
		return fmt.Errorf("failed to create favorite: %w", err)
	}

	return nil
}

// Delete removes a user's favorite for a company
func (r *favoriteRepository) Delete(ctx context.Context, userID, companyID string) error {
	query := `DELETE FROM favorites WHERE user_id = $1 AND company_id = $2`

	result, err := r.db.DB.ExecContext(ctx, query, userID, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("favorite not found: %w", ErrNotFound)
	}

	return nil
}

// ListByUser returns a user's favorites, newest first
func (r *favoriteRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Favorite, error) {
	query := `SELECT id, user_id, company_id, created_at FROM favorites WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	var favorites []*domain.Favorite
	for rows.Next() {
		favorite := &domain.Favorite{}
		if err := rows.Scan(&favorite.ID, &favorite.UserID, &favorite.CompanyID, &favorite.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, favorite)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorites: %w", err)
	}

	return favorites, nil
}
