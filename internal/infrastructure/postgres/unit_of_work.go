package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"dynamite/internal/domain/account"
	"dynamite/internal/domain/ledger"
	"dynamite/internal/domain/market"
	"dynamite/internal/domain/transaction"
)

// UnitOfWork implements ledger.UnitOfWork with one database transaction per call.
// Rows are locked with SELECT ... FOR UPDATE and held until commit or rollback.
type UnitOfWork struct {
	db *DB
}

// NewUnitOfWork creates a new PostgreSQL unit of work
func NewUnitOfWork(db *DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Do runs fn inside a transaction, committing when it returns nil
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx ledger.Tx) error) error {
	tx, txCtx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(txCtx, &ledgerTx{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ledgerTx implements ledger.Tx
type ledgerTx struct {
	q querier
}

func (t *ledgerTx) Append(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	return appendTransaction(ctx, t.q, params)
}

func (t *ledgerTx) LockAccount(ctx context.Context, accountID string) (*account.Account, error) {
	a, err := scanAccount(t.q.QueryRowContext(ctx, selectAccount+` WHERE id = $1 FOR UPDATE`, accountID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	return a, nil
}

func (t *ledgerTx) LockCard(ctx context.Context, accountID, cardDigits string) (*account.Card, error) {
	c, err := scanCard(t.q.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE account_id = $1 AND card_digits = $2 FOR UPDATE`,
		accountID, cardDigits))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock card: %w", err)
	}
	return c, nil
}

func (t *ledgerTx) LockPortfolio(ctx context.Context, accountID string) (*account.Portfolio, error) {
	var p account.Portfolio
	err := t.q.QueryRowContext(ctx,
		`SELECT id, account_id, portfolio_val FROM portfolios WHERE account_id = $1 FOR UPDATE`, accountID,
	).Scan(&p.ID, &p.AccountID, &p.PortfolioVal)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("portfolio for account %s: %w", accountID, account.ErrAccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock portfolio: %w", err)
	}
	return &p, nil
}

func (t *ledgerTx) LockHolding(ctx context.Context, portfolioID, companyID string) (*account.Holding, error) {
	var h account.Holding
	err := t.q.QueryRowContext(ctx, `
		SELECT portfolio_id, company_id, symbol, shares
		FROM portfolio_companies
		WHERE portfolio_id = $1 AND company_id = $2
		FOR UPDATE
	`, portfolioID, companyID).Scan(&h.PortfolioID, &h.CompanyID, &h.Symbol, &h.Shares)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrHoldingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock holding: %w", err)
	}
	return &h, nil
}

func (t *ledgerTx) ListHoldings(ctx context.Context, portfolioID string) ([]*account.Holding, error) {
	return listHoldings(ctx, t.q, portfolioID)
}

func (t *ledgerTx) GetCompany(ctx context.Context, symbol string) (*market.Company, error) {
	return getCompany(ctx, t.q, symbol)
}

func (t *ledgerTx) UpdateAccountBalances(ctx context.Context, accountID string, balance, value decimal.Decimal) error {
	return t.exec(ctx, "update account balances",
		`UPDATE accounts SET account_balance = $2, account_value = $3, updated_at = now() WHERE id = $1`,
		accountID, balance, value)
}

func (t *ledgerTx) UpdateCardValue(ctx context.Context, cardID string, value decimal.Decimal) error {
	return t.exec(ctx, "update card value", `UPDATE cards SET value = $2 WHERE id = $1`, cardID, value)
}

func (t *ledgerTx) UpdatePortfolioValue(ctx context.Context, portfolioID string, value decimal.Decimal) error {
	return t.exec(ctx, "update portfolio value", `UPDATE portfolios SET portfolio_val = $2 WHERE id = $1`, portfolioID, value)
}

func (t *ledgerTx) SaveHolding(ctx context.Context, h account.Holding) error {
	return t.exec(ctx, "save holding", `
		INSERT INTO portfolio_companies (portfolio_id, company_id, symbol, shares)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (portfolio_id, company_id) DO UPDATE SET shares = EXCLUDED.shares
	`, h.PortfolioID, h.CompanyID, h.Symbol, h.Shares)
}

func (t *ledgerTx) DeleteHolding(ctx context.Context, portfolioID, companyID string) error {
	return t.exec(ctx, "delete holding",
		`DELETE FROM portfolio_companies WHERE portfolio_id = $1 AND company_id = $2`, portfolioID, companyID)
}

func (t *ledgerTx) exec(ctx context.Context, what, query string, args ...any) error {
	if _, err := t.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to %s: %w", what, err)
	}
	return nil
}
