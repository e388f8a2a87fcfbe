package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dynamite/internal/domain/market"
	"dynamite/internal/domain/watchlist"
)

// WatchlistRepository implements the watchlist.Repository interface for PostgreSQL
type WatchlistRepository struct {
	db *DB
}

// NewWatchlistRepository creates a new PostgreSQL watchlist repository
func NewWatchlistRepository(db *DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// ListCompanies returns the companies on the account's watchlist
func (r *WatchlistRepository) ListCompanies(ctx context.Context, accountID string) ([]*market.Company, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.symbol, c.price, c.summary, c.updated_at
		FROM watchlists w
		JOIN watchlist_companies wc ON wc.watchlist_id = w.id
		JOIN companies c ON c.id = wc.company_id
		WHERE w.account_id = $1
		ORDER BY c.symbol
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	defer rows.Close()

	companies := []*market.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watchlist company: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate watchlist: %w", err)
	}
	return companies, nil
}

// Add puts a company on the account's watchlist
func (r *WatchlistRepository) Add(ctx context.Context, accountID string, company *market.Company) (*watchlist.Item, error) {
	var watchlistID string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM watchlists WHERE account_id = $1`, accountID).Scan(&watchlistID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, watchlist.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist: %w", err)
	}

	item := watchlist.Item{WatchlistID: watchlistID, CompanyID: company.ID, Symbol: company.Symbol}
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO watchlist_companies (watchlist_id, company_id, symbol)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, watchlistID, company.ID, company.Symbol).Scan(&item.CreatedAt)
	if isUniqueViolation(err) {
		return nil, watchlist.ErrAlreadyWatched
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add watchlist item: %w", err)
	}
	return &item, nil
}

// Remove takes a company off the account's watchlist
func (r *WatchlistRepository) Remove(ctx context.Context, accountID, companyID string) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM watchlist_companies wc
		USING watchlists w
		WHERE wc.watchlist_id = w.id AND w.account_id = $1 AND wc.company_id = $2
	`, accountID, companyID)
	if err != nil {
		return fmt.Errorf("failed to remove watchlist item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return watchlist.ErrNotWatched
	}
	return nil
}
