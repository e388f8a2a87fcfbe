package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"dynamite/internal/domain/market"
)

// CompanyRepository implements the market.Repository interface for PostgreSQL
type CompanyRepository struct {
	db *DB
}

// NewCompanyRepository creates a new PostgreSQL company repository
func NewCompanyRepository(db *DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

const companyColumns = `id, symbol, price, summary, updated_at`

func scanCompany(row interface{ Scan(...any) error }) (*market.Company, error) {
	var (
		c       market.Company
		summary []byte
	)
	if err := row.Scan(&c.ID, &c.Symbol, &c.Price, &summary, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if len(summary) > 0 {
		c.Summary = summary
	}
	return &c, nil
}

// List returns every company ordered by symbol
func (r *CompanyRepository) List(ctx context.Context) ([]*market.Company, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	companies := []*market.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate companies: %w", err)
	}
	return companies, nil
}

// GetBySymbol retrieves a company by ticker
func (r *CompanyRepository) GetBySymbol(ctx context.Context, symbol string) (*market.Company, error) {
	return getCompany(ctx, r.db, symbol)
}

func getCompany(ctx context.Context, q querier, symbol string) (*market.Company, error) {
	c, err := scanCompany(q.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies WHERE symbol = $1`, symbol))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, market.ErrCompanyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return c, nil
}

// Upsert creates or replaces a company keyed by symbol
func (r *CompanyRepository) Upsert(ctx context.Context, params market.UpsertParams) (*market.Company, error) {
	c, err := scanCompany(r.db.QueryRowContext(ctx, `
		INSERT INTO companies (id, symbol, price, summary, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (symbol) DO UPDATE
		SET price = EXCLUDED.price, summary = EXCLUDED.summary, updated_at = now()
		RETURNING `+companyColumns,
		uuid.NewString(), params.Symbol, params.Price, nullJSON(params.Summary),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert company %s: %w", params.Symbol, err)
	}
	return c, nil
}
