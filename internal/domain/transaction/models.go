package transaction

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the outcome of a monetary attempt
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Type labels for non-trade attempts
const (
	TypeDeposit  = "deposit"
	TypeWithdraw = "withdraw"
)

const (
	buyPrefix  = "buy "
	sellPrefix = "sell "
)

// ErrInvalidRecord is returned when a record is missing its account, type or status
var ErrInvalidRecord = errors.New("invalid transaction record")

// Transaction is one entry of the append-only audit log
type Transaction struct {
	ID        string          `json:"id"`
	AccountID string          `json:"accountId"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

// CreateParams contains parameters for appending a record
type CreateParams struct {
	AccountID string
	Type      string
	Amount    decimal.Decimal
	Status    Status
}

// Validate validates the append parameters
func (p CreateParams) Validate() error {
	if p.AccountID == "" || p.Type == "" {
		return ErrInvalidRecord
	}
	if p.Status != StatusSuccess && p.Status != StatusFailed {
		return ErrInvalidRecord
	}
	return nil
}

// NormalizeSymbol upper-cases and trims a ticker symbol
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// BuyType returns the label recorded for a purchase of symbol
func BuyType(symbol string) string {
	return buyPrefix + NormalizeSymbol(symbol)
}

// SellType returns the label recorded for a sale of symbol
func SellType(symbol string) string {
	return sellPrefix + NormalizeSymbol(symbol)
}

// Symbol extracts the ticker from a trade label; ok is false for deposit and withdraw
func Symbol(label string) (symbol string, ok bool) {
	switch {
	case strings.HasPrefix(label, buyPrefix):
		return strings.TrimPrefix(label, buyPrefix), true
	case strings.HasPrefix(label, sellPrefix):
		return strings.TrimPrefix(label, sellPrefix), true
	}
	return "", false
}
