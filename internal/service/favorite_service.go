package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/yhsong/finbell/internal/domain"
	"github.com/yhsong/finbell/internal/repository"
)

// FavoriteService manages a user's favorited companies.
type FavoriteService struct {
	favorites repository.FavoriteRepository
	companies repository.CompanyRepository
	logger    *zap.Logger
}

// NewFavoriteService creates a new favorite service
func NewFavoriteService(
	favorites repository.FavoriteRepository,
	companies repository.CompanyRepository,
	logger *zap.Logger,
) *FavoriteService {
	return &FavoriteService{
		favorites: favorites,
		companies: companies,
		logger:    logger,
	}
}

// Add favorites a company for the user. Adding an already-favorited company
// succeeds without creating a second row.
func (s *FavoriteService) Add(ctx context.Context, userID, companyID string) error {
	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return err
	}

	err := s.favorites.Create(ctx, &domain.Favorite{UserID: userID, CompanyID: companyID})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateFavorite) {
			return nil
		}
		return fmt.Errorf("failed to add favorite: %w", err)
	}

	s.logger.Info("favorite added", zap.String("user_id", userID), zap.String("company_id", companyID))
	return nil
}

// Remove deletes the user's favorite for a company.
func (s *FavoriteService) Remove(ctx context.Context, userID, companyID string) error {
	return s.favorites.Delete(ctx, userID, companyID)
}

// List returns the user's favorites, newest first.
func (s *FavoriteService) List(ctx context.Context, userID string) ([]*domain.Favorite, error) {
	return s.favorites.ListByUser(ctx, userID)
}
