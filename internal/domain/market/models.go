package market

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"dynamite/internal/domain/transaction"
)

// Domain errors
var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrInvalidCompany  = errors.New("invalid company")
)

// Summary paths read by the quote digest
const (
	pathShortName      = "$.price.shortName"
	pathSector         = "$.summaryProfile.sector"
	pathRecommendation = "$.financialData.recommendationKey"
	pathMarketCap      = "$.price.marketCap.raw"
	pathDayChange      = "$.price.regularMarketChange.fmt"
	pathEmployees      = "$.summaryProfile.fullTimeEmployees"
	pathMarketPrice    = "$.price.regularMarketPrice.raw"
)

// Company is a listed company with its last known price and raw market summary
type Company struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Summary   json.RawMessage `json:"summary,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Quote is the digest of a summary payload shown next to a company
type Quote struct {
	ShortName         string `json:"shortName,omitempty"`
	Sector            string `json:"sector,omitempty"`
	RecommendationKey string `json:"recommendationKey,omitempty"`
	MarketCap         string `json:"marketCap,omitempty"`
	DayChange         string `json:"dayChange,omitempty"`
	FullTimeEmployees string `json:"fullTimeEmployees,omitempty"`
}

// Listing is a company together with its quote digest
type Listing struct {
	*Company
	Quote Quote `json:"quote"`
}

// Digest extracts the quote fields. Missing paths leave fields empty.
func (c *Company) Digest() Quote {
	doc := c.document()
	if doc == nil {
		return Quote{}
	}
	return Quote{
		ShortName:         lookup(doc, pathShortName),
		Sector:            lookup(doc, pathSector),
		RecommendationKey: lookup(doc, pathRecommendation),
		MarketCap:         lookup(doc, pathMarketCap),
		DayChange:         lookup(doc, pathDayChange),
		FullTimeEmployees: lookup(doc, pathEmployees),
	}
}

func (c *Company) document() interface{} {
	if len(c.Summary) == 0 {
		return nil
	}
	var doc interface{}
	if err := json.Unmarshal(c.Summary, &doc); err != nil {
		return nil
	}
	return doc
}

func lookup(doc interface{}, path string) string {
	v, err := jsonpath.Get(path, doc)
	if err != nil || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return decimal.NewFromFloat(val).String()
	default:
		return fmt.Sprint(val)
	}
}

// UpsertParams contains parameters for seeding a company
type UpsertParams struct {
	Symbol  string
	Price   decimal.Decimal
	Summary json.RawMessage
}

// Normalize upper-cases the symbol and falls back to the summary's market price
func (p *UpsertParams) Normalize() {
	p.Symbol = transaction.NormalizeSymbol(p.Symbol)
	if !p.Price.IsZero() || len(p.Summary) == 0 {
		return
	}
	var doc interface{}
	if err := json.Unmarshal(p.Summary, &doc); err != nil {
		return
	}
	v, err := jsonpath.Get(pathMarketPrice, doc)
	if err != nil {
		return
	}
	if f, ok := v.(float64); ok {
		p.Price = decimal.NewFromFloat(f)
	}
}

// Validate validates the seed parameters
func (p UpsertParams) Validate() error {
	if p.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidCompany)
	}
	if !p.Price.IsPositive() {
		return fmt.Errorf("%w: %s needs a positive price", ErrInvalidCompany, p.Symbol)
	}
	if len(p.Summary) > 0 && !json.Valid(p.Summary) {
		return fmt.Errorf("%w: %s summary is not valid JSON", ErrInvalidCompany, p.Symbol)
	}
	return nil
}
