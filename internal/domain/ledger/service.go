package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"dynamite/internal/domain/account"
	"dynamite/internal/domain/market"
	"dynamite/internal/domain/transaction"
)

var (
	ledgerMeter      = otel.Meter("dynamite/ledger")
	mutationTotal, _ = ledgerMeter.Int64Counter("ledger.mutations.total",
		metric.WithDescription("Balance mutations by operation and outcome"))
)

// Service moves money between cards, account balances and holdings.
// Every operation is one unit of work.
type Service struct {
	uow    UnitOfWork
	policy Policy
}

// NewService creates a new ledger service
func NewService(uow UnitOfWork, policy Policy) *Service {
	return &Service{uow: uow, policy: policy}
}

// Policy returns the limits the service enforces
func (s *Service) Policy() Policy {
	return s.policy
}

// rejection marks a domain failure that is recorded and committed rather than rolled back
type rejection struct {
	err error
}

func (r *rejection) Error() string { return r.err.Error() }
func (r *rejection) Unwrap() error { return r.err }

func reject(err error) error {
	return &rejection{err: err}
}

// attempt is the state shared by one mutation
type attempt struct {
	tx      Tx
	account *account.Account
	amount  decimal.Decimal
}

// mutate loads and locks the account, then runs apply. A rejection from apply is
// recorded as a failed transaction and committed; other errors roll back.
func (s *Service) mutate(ctx context.Context, op, accountID, label string, amount decimal.Decimal, apply func(ctx context.Context, a *attempt) error) (*transaction.Transaction, error) {
	var (
		record  *transaction.Transaction
		outcome error
	)

	err := s.uow.Do(ctx, func(ctx context.Context, tx Tx) error {
		record, outcome = nil, nil

		acc, err := tx.LockAccount(ctx, accountID)
		if err != nil {
			return err
		}

		a := &attempt{tx: tx, account: acc, amount: amount}
		status := transaction.StatusSuccess

		if !amount.IsPositive() {
			outcome = ErrInvalidAmount
		} else if err := apply(ctx, a); err != nil {
			var rj *rejection
			if !errors.As(err, &rj) {
				return err
			}
			outcome = rj.err
		}
		if outcome != nil {
			status = transaction.StatusFailed
		}

		record, err = tx.Append(ctx, transaction.CreateParams{
			AccountID: acc.ID,
			Type:      label,
			Amount:    a.amount,
			Status:    status,
		})
		return err
	})

	switch {
	case err != nil:
		s.count(ctx, op, "error")
		return nil, err
	case outcome != nil:
		s.count(ctx, op, string(transaction.StatusFailed))
		return record, outcome
	default:
		s.count(ctx, op, string(transaction.StatusSuccess))
		return record, nil
	}
}

func (s *Service) count(ctx context.Context, op, status string) {
	mutationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("status", status),
	))
}

// lockCard maps a missing card to a recorded failure
func lockCard(ctx context.Context, a *attempt, cardDigits string) (*account.Card, error) {
	card, err := a.tx.LockCard(ctx, a.account.ID, cardDigits)
	if errors.Is(err, account.ErrCardNotFound) {
		return nil, reject(err)
	}
	return card, err
}

// company resolves a tradable company, rejecting unknown symbols and unusable prices
func company(ctx context.Context, a *attempt, symbol string) (*market.Company, error) {
	c, err := a.tx.GetCompany(ctx, symbol)
	if errors.Is(err, market.ErrCompanyNotFound) {
		return nil, reject(err)
	}
	if err != nil {
		return nil, err
	}
	if !c.Price.IsPositive() {
		return nil, reject(ErrPriceUnavailable)
	}
	return c, nil
}

// Deposit moves amount from the card into the account
func (s *Service) Deposit(ctx context.Context, accountID, cardDigits string, amount decimal.Decimal) (*transaction.Transaction, error) {
	return s.mutate(ctx, "deposit", accountID, transaction.TypeDeposit, amount, func(ctx context.Context, a *attempt) error {
		card, err := lockCard(ctx, a, cardDigits)
		if err != nil {
			return err
		}
		if a.amount.GreaterThan(card.Value) {
			return reject(ErrInsufficientFunds)
		}

		if err := a.tx.UpdateCardValue(ctx, card.ID, card.Value.Sub(a.amount)); err != nil {
			return err
		}
		return a.tx.UpdateAccountBalances(ctx, a.account.ID,
			a.account.AccountBalance.Add(a.amount),
			a.account.AccountValue.Add(a.amount))
	})
}

// Withdraw moves amount from the account back onto the card
func (s *Service) Withdraw(ctx context.Context, accountID, cardDigits string, amount decimal.Decimal) (*transaction.Transaction, error) {
	return s.mutate(ctx, "withdraw", accountID, transaction.TypeWithdraw, amount, func(ctx context.Context, a *attempt) error {
		card, err := lockCard(ctx, a, cardDigits)
		if err != nil {
			return err
		}
		if a.amount.GreaterThan(a.account.AccountBalance) {
			return reject(ErrInsufficientFunds)
		}

		if err := a.tx.UpdateAccountBalances(ctx, a.account.ID,
			a.account.AccountBalance.Sub(a.amount),
			a.account.AccountValue.Sub(a.amount)); err != nil {
			return err
		}
		return a.tx.UpdateCardValue(ctx, card.ID, card.Value.Add(a.amount))
	})
}

// Buy spends amount of the account balance on shares of symbol at the current price
func (s *Service) Buy(ctx context.Context, accountID, symbol string, amount decimal.Decimal) (*transaction.Transaction, error) {
	symbol = transaction.NormalizeSymbol(symbol)
	return s.mutate(ctx, "buy", accountID, transaction.BuyType(symbol), amount, func(ctx context.Context, a *attempt) error {
		if a.amount.LessThan(s.policy.MinBuyAmount) {
			return reject(ErrInvalidAmount)
		}
		if a.amount.GreaterThan(a.account.AccountBalance) {
			return reject(ErrInsufficientFunds)
		}
		c, err := company(ctx, a, symbol)
		if err != nil {
			return err
		}
		portfolio, err := a.tx.LockPortfolio(ctx, a.account.ID)
		if err != nil {
			return err
		}

		holding, err := a.tx.LockHolding(ctx, portfolio.ID, c.ID)
		switch {
		case errors.Is(err, account.ErrHoldingNotFound):
			holding = &account.Holding{PortfolioID: portfolio.ID, CompanyID: c.ID, Symbol: c.Symbol}
		case err != nil:
			return err
		}
		holding.Shares = holding.Shares.Add(a.amount.Div(c.Price))

		if err := a.tx.SaveHolding(ctx, *holding); err != nil {
			return err
		}
		if err := a.tx.UpdateAccountBalances(ctx, a.account.ID,
			a.account.AccountBalance.Sub(a.amount),
			a.account.AccountValue); err != nil {
			return err
		}
		return a.tx.UpdatePortfolioValue(ctx, portfolio.ID, portfolio.PortfolioVal.Add(a.amount))
	})
}

// Sell converts amount worth of the symbol's shares back into account balance.
// An amount above the market value but within Policy.SellTolerance sells the
// whole position for its market value, and that is the amount recorded.
func (s *Service) Sell(ctx context.Context, accountID, symbol string, amount decimal.Decimal) (*transaction.Transaction, error) {
	symbol = transaction.NormalizeSymbol(symbol)
	return s.mutate(ctx, "sell", accountID, transaction.SellType(symbol), amount, func(ctx context.Context, a *attempt) error {
		c, err := company(ctx, a, symbol)
		if err != nil {
			return err
		}
		portfolio, err := a.tx.LockPortfolio(ctx, a.account.ID)
		if err != nil {
			return err
		}
		holding, err := a.tx.LockHolding(ctx, portfolio.ID, c.ID)
		if errors.Is(err, account.ErrHoldingNotFound) {
			return reject(err)
		}
		if err != nil {
			return err
		}

		value := holding.Shares.Mul(c.Price)
		if a.amount.GreaterThan(value.Add(s.policy.SellTolerance)) {
			return reject(ErrInsufficientFunds)
		}

		if a.amount.GreaterThanOrEqual(value) {
			a.amount = value
			holding.Shares = decimal.Zero
		} else {
			holding.Shares = holding.Shares.Sub(a.amount.Div(c.Price))
		}
		if holding.Shares.LessThanOrEqual(s.policy.HoldingEpsilon) {
			err = a.tx.DeleteHolding(ctx, portfolio.ID, c.ID)
		} else {
			err = a.tx.SaveHolding(ctx, *holding)
		}
		if err != nil {
			return err
		}

		if err := a.tx.UpdateAccountBalances(ctx, a.account.ID,
			a.account.AccountBalance.Add(a.amount),
			a.account.AccountValue.Add(a.amount)); err != nil {
			return err
		}
		return a.tx.UpdatePortfolioValue(ctx, portfolio.ID, portfolio.PortfolioVal.Sub(a.amount))
	})
}

// Revalue sets the portfolio value to the sum of its positions at current prices.
// No transaction is recorded.
func (s *Service) Revalue(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.uow.Do(ctx, func(ctx context.Context, tx Tx) error {
		total = decimal.Zero
		portfolio, err := tx.LockPortfolio(ctx, accountID)
		if err != nil {
			return err
		}
		holdings, err := tx.ListHoldings(ctx, portfolio.ID)
		if err != nil {
			return err
		}
		for _, h := range holdings {
			total = total.Add(h.MarketValue())
		}
		return tx.UpdatePortfolioValue(ctx, portfolio.ID, total)
	})
	if err != nil {
		s.count(ctx, "revalue", "error")
		return decimal.Zero, err
	}
	s.count(ctx, "revalue", string(transaction.StatusSuccess))
	return total, nil
}
