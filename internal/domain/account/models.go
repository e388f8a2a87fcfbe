package account

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CardTypeVisa is the only card network issued by the simulator
const CardTypeVisa = "VISA"

// DefaultWatchlistName is the name given to the watchlist created with an account
const DefaultWatchlistName = "default"

var (
	cardNumberPattern = regexp.MustCompile(`^[0-9]{16}$`)
	expiryPattern     = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
)

// Domain errors
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrCardNotFound    = errors.New("card not found")
	ErrHoldingNotFound = errors.New("holding not found")
	ErrDuplicateCard   = errors.New("card already registered")
	ErrInvalidInput    = errors.New("invalid input")
)

// Account is a brokerage account keyed by the identity provider subject
type Account struct {
	ID             string          `json:"id"`
	AccountBalance decimal.Decimal `json:"accountBalance"`
	AccountValue   decimal.Decimal `json:"accountValue"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Portfolio      *Portfolio      `json:"portfolio,omitempty"`
}

// Portfolio aggregates the holdings of one account
type Portfolio struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"accountId"`
	PortfolioVal decimal.Decimal `json:"portfolioVal"`
	Companies    []*Holding      `json:"companies"`
}

// Holding is a fractional position in one company.
// Price is filled on reads that join the company row.
type Holding struct {
	PortfolioID string          `json:"portfolioId"`
	CompanyID   string          `json:"companyId"`
	Symbol      string          `json:"symbol"`
	Shares      decimal.Decimal `json:"shares"`
	Price       decimal.Decimal `json:"price"`
}

// MarketValue returns shares priced at the joined company price
func (h *Holding) MarketValue() decimal.Decimal {
	return h.Shares.Mul(h.Price)
}

// Card is a virtual payment card used to move funds in and out of an account
type Card struct {
	ID         string          `json:"id"`
	AccountID  string          `json:"accountId"`
	CardDigits string          `json:"cardDigits"`
	HolderName string          `json:"holderName"`
	Value      decimal.Decimal `json:"value"`
	Expiration string          `json:"expiration"`
	Color      string          `json:"color"`
	Type       string          `json:"type"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// CreateCardParams contains parameters for registering a card
type CreateCardParams struct {
	AccountID  string
	CardDigits string
	HolderName string
	Value      decimal.Decimal
	Expiration string
	Color      string
}

// Normalize trims whitespace and strips the separators users type into card numbers
func (p *CreateCardParams) Normalize() {
	p.HolderName = strings.TrimSpace(p.HolderName)
	p.Expiration = strings.TrimSpace(p.Expiration)
	p.Color = strings.TrimSpace(p.Color)
	p.CardDigits = NormalizeCardDigits(p.CardDigits)
}

// NormalizeCardDigits strips spaces and dashes from a typed card number
func NormalizeCardDigits(digits string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(digits))
}

// Validate validates the card parameters
func (p CreateCardParams) Validate() error {
	if p.AccountID == "" {
		return fmt.Errorf("%w: account ID is required", ErrInvalidInput)
	}
	if p.HolderName == "" {
		return fmt.Errorf("%w: holder name is required", ErrInvalidInput)
	}
	if !cardNumberPattern.MatchString(p.CardDigits) {
		return fmt.Errorf("%w: card number must have 16 digits", ErrInvalidInput)
	}
	if !expiryPattern.MatchString(p.Expiration) {
		return fmt.Errorf("%w: expiry date must be MM/YY", ErrInvalidInput)
	}
	if p.Value.IsNegative() {
		return fmt.Errorf("%w: card value cannot be negative", ErrInvalidInput)
	}
	if p.Color == "" {
		return fmt.Errorf("%w: color is required", ErrInvalidInput)
	}
	return nil
}
