package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"dynamite/internal/domain/account"
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	db *DB
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Ensure creates the account, its portfolio and its default watchlist when missing
func (r *AccountRepository) Ensure(ctx context.Context, id string) (*account.Account, error) {
	tx, txCtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(txCtx, `INSERT INTO accounts (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, id); err != nil {
		return nil, fmt.Errorf("failed to ensure account: %w", err)
	}
	if _, err := tx.ExecContext(txCtx,
		`INSERT INTO portfolios (id, account_id) VALUES ($1, $2) ON CONFLICT (account_id) DO NOTHING`,
		uuid.NewString(), id,
	); err != nil {
		return nil, fmt.Errorf("failed to ensure portfolio: %w", err)
	}
	if _, err := tx.ExecContext(txCtx,
		`INSERT INTO watchlists (id, account_id, name) VALUES ($1, $2, $3) ON CONFLICT (account_id) DO NOTHING`,
		uuid.NewString(), id, account.DefaultWatchlistName,
	); err != nil {
		return nil, fmt.Errorf("failed to ensure watchlist: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit account creation: %w", err)
	}

	return r.GetByID(ctx, id)
}

const selectAccount = `
	SELECT id, account_balance, account_value, created_at, updated_at
	FROM accounts
`

func scanAccount(row interface{ Scan(...any) error }) (*account.Account, error) {
	var a account.Account
	err := row.Scan(&a.ID, &a.AccountBalance, &a.AccountValue, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByID retrieves an account with its portfolio and holdings
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*account.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, selectAccount+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if a.Portfolio, err = getPortfolio(ctx, r.db, id); err != nil && !errors.Is(err, account.ErrAccountNotFound) {
		return nil, err
	}
	return a, nil
}

// List retrieves every account with its portfolio and holdings, oldest first
func (r *AccountRepository) List(ctx context.Context) ([]*account.Account, error) {
	rows, err := r.db.QueryContext(ctx, selectAccount+` ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	for _, a := range accounts {
		if a.Portfolio, err = getPortfolio(ctx, r.db, a.ID); err != nil && !errors.Is(err, account.ErrAccountNotFound) {
			return nil, err
		}
	}
	return accounts, nil
}

// GetPortfolio retrieves the portfolio of an account with priced holdings
func (r *AccountRepository) GetPortfolio(ctx context.Context, accountID string) (*account.Portfolio, error) {
	return getPortfolio(ctx, r.db, accountID)
}

func getPortfolio(ctx context.Context, q querier, accountID string) (*account.Portfolio, error) {
	var p account.Portfolio
	err := q.QueryRowContext(ctx,
		`SELECT id, account_id, portfolio_val FROM portfolios WHERE account_id = $1`, accountID,
	).Scan(&p.ID, &p.AccountID, &p.PortfolioVal)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}

	if p.Companies, err = listHoldings(ctx, q, p.ID); err != nil {
		return nil, err
	}
	return &p, nil
}

func listHoldings(ctx context.Context, q querier, portfolioID string) ([]*account.Holding, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT pc.portfolio_id, pc.company_id, pc.symbol, pc.shares, c.price
		FROM portfolio_companies pc
		JOIN companies c ON c.id = pc.company_id
		WHERE pc.portfolio_id = $1
		ORDER BY pc.symbol
	`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	defer rows.Close()

	holdings := []*account.Holding{}
	for rows.Next() {
		var h account.Holding
		if err := rows.Scan(&h.PortfolioID, &h.CompanyID, &h.Symbol, &h.Shares, &h.Price); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings: %w", err)
	}
	return holdings, nil
}
