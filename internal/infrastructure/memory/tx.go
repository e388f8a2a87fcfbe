package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"dynamite/internal/domain/account"
	"dynamite/internal/domain/market"
	"dynamite/internal/domain/transaction"
)

// tx implements ledger.Tx over a cloned state. The store mutex is the lock.
type tx struct {
	st  *state
	now func() time.Time
}

func (t *tx) Append(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	rec := transaction.Transaction{
		ID:        uuid.NewString(),
		AccountID: params.AccountID,
		Type:      params.Type,
		Amount:    params.Amount,
		Status:    params.Status,
		CreatedAt: t.now(),
	}
	t.st.transactions = append(t.st.transactions, rec)
	return &rec, nil
}

func (t *tx) LockAccount(ctx context.Context, accountID string) (*account.Account, error) {
	a, ok := t.st.accounts[accountID]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return &a, nil
}

func (t *tx) LockCard(ctx context.Context, accountID, cardDigits string) (*account.Card, error) {
	c, ok := t.st.cards[cardDigits]
	if !ok || c.AccountID != accountID {
		return nil, account.ErrCardNotFound
	}
	return &c, nil
}

func (t *tx) LockPortfolio(ctx context.Context, accountID string) (*account.Portfolio, error) {
	p, ok := t.st.portfolios[accountID]
	if !ok {
		return nil, fmt.Errorf("portfolio for account %s: %w", accountID, account.ErrAccountNotFound)
	}
	return &p, nil
}

func (t *tx) LockHolding(ctx context.Context, portfolioID, companyID string) (*account.Holding, error) {
	h, ok := t.st.holdings[portfolioID][companyID]
	if !ok {
		return nil, account.ErrHoldingNotFound
	}
	return &h, nil
}

func (t *tx) ListHoldings(ctx context.Context, portfolioID string) ([]*account.Holding, error) {
	return t.st.pricedHoldings(portfolioID), nil
}

func (t *tx) GetCompany(ctx context.Context, symbol string) (*market.Company, error) {
	c, ok := t.st.companies[symbol]
	if !ok {
		return nil, market.ErrCompanyNotFound
	}
	return &c, nil
}

func (t *tx) UpdateAccountBalances(ctx context.Context, accountID string, balance, value decimal.Decimal) error {
	a, ok := t.st.accounts[accountID]
	if !ok {
		return account.ErrAccountNotFound
	}
	a.AccountBalance = balance
	a.AccountValue = value
	a.UpdatedAt = t.now()
	t.st.accounts[accountID] = a
	return nil
}

func (t *tx) UpdateCardValue(ctx context.Context, cardID string, value decimal.Decimal) error {
	for digits, c := range t.st.cards {
		if c.ID == cardID {
			c.Value = value
			t.st.cards[digits] = c
			return nil
		}
	}
	return account.ErrCardNotFound
}

func (t *tx) UpdatePortfolioValue(ctx context.Context, portfolioID string, value decimal.Decimal) error {
	for accountID, p := range t.st.portfolios {
		if p.ID == portfolioID {
			p.PortfolioVal = value
			t.st.portfolios[accountID] = p
			return nil
		}
	}
	return account.ErrAccountNotFound
}

func (t *tx) SaveHolding(ctx context.Context, holding account.Holding) error {
	if t.st.holdings[holding.PortfolioID] == nil {
		t.st.holdings[holding.PortfolioID] = make(map[string]account.Holding)
	}
	holding.Price = decimal.Decimal{}
	t.st.holdings[holding.PortfolioID][holding.CompanyID] = holding
	return nil
}

func (t *tx) DeleteHolding(ctx context.Context, portfolioID, companyID string) error {
	if _, ok := t.st.holdings[portfolioID][companyID]; !ok {
		return account.ErrHoldingNotFound
	}
	delete(t.st.holdings[portfolioID], companyID)
	return nil
}
