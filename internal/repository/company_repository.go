package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yhsong/finbell/internal/domain"
	"github.com/yhsong/finbell/pkg/database"
)

// companyRepository implements CompanyRepository interface
type companyRepository struct {
	db *database.Postgres
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *database.Postgres) CompanyRepository {
	return &companyRepository{db: db}
}

const companyColumns = `id, symbol, name, market, sector, created_at, updated_at`

func scanCompany(scan func(dest ...any) error) (*domain.Company, error) {
	company := &domain.Company{}
	var sector sql.NullString

	err := scan(
		&company.ID,
		&company.Symbol,
		&company.Name,
		&company.Market,
		&sector,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if sector.Valid {
		company.Sector = &sector.String
	}

	return company, nil
}

// List returns a page of companies, optionally filtered by a case-insensitive
// match on name or symbol, together with the total match count.
func (r *companyRepository) List(ctx context.Context, search string, limit, offset int) ([]*domain.Company, int, error) {
	where := ``
	args := []any{limit, offset}
	countArgs := []any{}
	if search != "" {
		where = ` WHERE name ILIKE $3 OR symbol ILIKE $3`
		pattern := "%" + search + "%"
		args = append(args, pattern)
		countArgs = append(countArgs, pattern)
	}

	countQuery := `SELECT COUNT(*) FROM companies`
	if search != "" {
		countQuery += ` WHERE name ILIKE $1 OR symbol ILIKE $1`
	}

	var total int
	if err := r.db.DB.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count companies: %w", err)
	}

	query := `SELECT ` + companyColumns + ` FROM companies` + where + ` ORDER BY symbol ASC LIMIT $1 OFFSET $2`

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []*domain.Company
	for rows.Next() {
		company, err := scanCompany(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, company)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate companies: %w", err)
	}

	return companies, total, nil
}

// GetByID retrieves a company by ID
func (r *companyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`

	row := r.db.DB.QueryRowContext(ctx, query, id)
	company, err := scanCompany(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("company with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	return company, nil
}
