package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"dynamite/internal/domain/account"
	"dynamite/internal/domain/market"
	"dynamite/internal/domain/transaction"
)

// Domain errors
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrPriceUnavailable  = errors.New("company price unavailable")
)

// Policy holds the tunable limits of the mutator
type Policy struct {
	// MinBuyAmount is the smallest purchase accepted
	MinBuyAmount decimal.Decimal
	// HoldingEpsilon is the share count at or below which a holding is closed
	HoldingEpsilon decimal.Decimal
	// SellTolerance is how far a sell may exceed the position's market value.
	// Such a sell closes the position and is credited the market value only.
	SellTolerance decimal.Decimal
}

// DefaultPolicy returns a $50 minimum purchase, a 0.1 share dust threshold and
// half a cent of sell tolerance, enough to sell a position at its displayed value.
func DefaultPolicy() Policy {
	return Policy{
		MinBuyAmount:   decimal.NewFromInt(50),
		HoldingEpsilon: decimal.RequireFromString("0.1"),
		SellTolerance:  decimal.RequireFromString("0.005"),
	}
}

// Tx is the set of row operations available inside one unit of work.
// Lock methods take a row lock that is held until the unit of work ends.
type Tx interface {
	transaction.Recorder

	// LockAccount returns account.ErrAccountNotFound when absent
	LockAccount(ctx context.Context, accountID string) (*account.Account, error)

	// LockCard returns account.ErrCardNotFound unless the account owns the card
	LockCard(ctx context.Context, accountID, cardDigits string) (*account.Card, error)

	// LockPortfolio returns the portfolio row without holdings
	LockPortfolio(ctx context.Context, accountID string) (*account.Portfolio, error)

	// LockHolding returns account.ErrHoldingNotFound when the portfolio has no position
	LockHolding(ctx context.Context, portfolioID, companyID string) (*account.Holding, error)

	// ListHoldings returns every position with the current company price
	ListHoldings(ctx context.Context, portfolioID string) ([]*account.Holding, error)

	// GetCompany returns market.ErrCompanyNotFound for unknown symbols
	GetCompany(ctx context.Context, symbol string) (*market.Company, error)

	UpdateAccountBalances(ctx context.Context, accountID string, balance, value decimal.Decimal) error
	UpdateCardValue(ctx context.Context, cardID string, value decimal.Decimal) error
	UpdatePortfolioValue(ctx context.Context, portfolioID string, value decimal.Decimal) error

	// SaveHolding creates or replaces the position
	SaveHolding(ctx context.Context, holding account.Holding) error
	DeleteHolding(ctx context.Context, portfolioID, companyID string) error
}

// UnitOfWork runs fn atomically. A nil return commits, anything else rolls back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
