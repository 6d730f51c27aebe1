package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yhsong/finbell/internal/domain"
	"github.com/yhsong/finbell/pkg/database"
)

// indicatorRepository implements IndicatorRepository interface
type indicatorRepository struct {
	db *database.Postgres
}

// NewIndicatorRepository creates a new indicator repository
func NewIndicatorRepository(db *database.Postgres) IndicatorRepository {
	return &indicatorRepository{db: db}
}

const indicatorColumns = `id, code, name, country, unit, latest_value, released_at, created_at, updated_at`

func scanIndicator(scan func(dest ...any) error) (*domain.EconomicIndicator, error) {
	indicator := &domain.EconomicIndicator{}
	var unit sql.NullString
	var latestValue sql.NullFloat64
	var releasedAt sql.NullTime

	err := scan(
		&indicator.ID,
		&indicator.Code,
		&indicator.Name,
		&indicator.Country,
		&unit,
		&latestValue,
		&releasedAt,
		&indicator.CreatedAt,
		&indicator.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if unit.Valid {
		indicator.Unit = &unit.String
	}
	if latestValue.Valid {
		indicator.LatestValue = &latestValue.Float64
	}
	if releasedAt.Valid {
		indicator.ReleasedAt = &releasedAt.Time
	}

	return indicator, nil
}

// List returns a page of economic indicators together with the total count
func (r *indicatorRepository) List(ctx context.Context, limit, offset int) ([]*domain.EconomicIndicator, int, error) {
	var total int
	if err := r.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM economic_indicators`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count indicators: %w", err)
	}

	query := `SELECT ` + indicatorColumns + ` FROM economic_indicators ORDER BY code ASC LIMIT $1 OFFSET $2`

	rows, err := r.db.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list indicators: %w", err)
	}
	defer rows.Close()

	var indicators []*domain.EconomicIndicator
	for rows.Next() {
		indicator, err := scanIndicator(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan indicator: %w", err)
		}
		indicators = append(indicators, indicator)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate indicators: %w", err)
	}

	return indicators, total, nil
}

// GetByID retrieves an economic indicator by ID
func (r *indicatorRepository) GetByID(ctx context.Context, id string) (*domain.EconomicIndicator, error) {
	query := `SELECT ` + indicatorColumns + ` FROM economic_indicators WHERE id = $1`

	row := r.db.DB.QueryRowContext(ctx, query, id)
	indicator, err := scanIndicator(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("indicator with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get indicator: %w", err)
	}

	return indicator, nil
}
