package market

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appleSummary = `{
  "price": {
    "shortName": "Apple Inc.",
    "marketCap": {"raw": 2900000000000, "fmt": "2.9T"},
    "regularMarketChange": {"raw": 1.25, "fmt": "1.25"},
    "regularMarketPrice": {"raw": 189.5, "fmt": "189.50"}
  },
  "summaryProfile": {"sector": "Technology", "fullTimeEmployees": 161000},
  "financialData": {"recommendationKey": "buy"}
}`

func TestCompany_Digest(t *testing.T) {
	c := &Company{Symbol: "AAPL", Summary: json.RawMessage(appleSummary)}

	q := c.Digest()

	assert.Equal(t, "Apple Inc.", q.ShortName)
	assert.Equal(t, "Technology", q.Sector)
	assert.Equal(t, "buy", q.RecommendationKey)
	assert.Equal(t, "2900000000000", q.MarketCap)
	assert.Equal(t, "1.25", q.DayChange)
	assert.Equal(t, "161000", q.FullTimeEmployees)
}

func TestCompany_DigestMissingPaths(t *testing.T) {
	tests := []struct {
		name    string
		summary string
	}{
		{"empty", ""},
		{"not json", "{oops"},
		{"no known sections", `{"quoteType": {"exchange": "NMS"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Company{Symbol: "X", Summary: json.RawMessage(tt.summary)}
			assert.Equal(t, Quote{}, c.Digest())
		})
	}
}

func TestUpsertParams_NormalizeFallsBackToSummaryPrice(t *testing.T) {
	p := UpsertParams{Symbol: " aapl ", Summary: json.RawMessage(appleSummary)}

	p.Normalize()

	assert.Equal(t, "AAPL", p.Symbol)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("189.5")), "price = %s", p.Price)
	assert.NoError(t, p.Validate())
}

func TestUpsertParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		params UpsertParams
	}{
		{"missing symbol", UpsertParams{Price: decimal.NewFromInt(1)}},
		{"zero price", UpsertParams{Symbol: "AAPL"}},
		{"negative price", UpsertParams{Symbol: "AAPL", Price: decimal.NewFromInt(-1)}},
		{"bad summary", UpsertParams{Symbol: "AAPL", Price: decimal.NewFromInt(1), Summary: json.RawMessage("{")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.params.Validate(), ErrInvalidCompany)
		})
	}
}

func TestParseSeed(t *testing.T) {
	doc := `
companies:
  - symbol: msft
    price: "410.20"
  - symbol: AAPL
    summary:
      price:
        shortName: Apple Inc.
        regularMarketPrice:
          raw: 189.5
      summaryProfile:
        sector: Technology
`
	params, err := ParseSeed(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, params, 2)

	assert.Equal(t, "MSFT", params[0].Symbol)
	assert.True(t, params[0].Price.Equal(decimal.RequireFromString("410.20")))
	assert.Empty(t, params[0].Summary)

	assert.Equal(t, "AAPL", params[1].Symbol)
	assert.True(t, params[1].Price.Equal(decimal.RequireFromString("189.5")))
	apple := &Company{Summary: params[1].Summary}
	assert.Equal(t, "Apple Inc.", apple.Digest().ShortName)
	assert.Equal(t, "Technology", apple.Digest().Sector)
}

func TestParseSeed_RejectsBadRows(t *testing.T) {
	_, err := ParseSeed(strings.NewReader("companies:\n  - symbol: AAPL\n    price: abc\n"))
	assert.Error(t, err)

	_, err = ParseSeed(strings.NewReader("companies:\n  - symbol: AAPL\n"))
	assert.ErrorIs(t, err, ErrInvalidCompany)
}
