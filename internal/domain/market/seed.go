package market

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// seedFile is the layout of a company seed document. JSON documents parse too.
type seedFile struct {
	Companies []seedCompany `yaml:"companies"`
}

type seedCompany struct {
	Symbol  string                 `yaml:"symbol"`
	Price   string                 `yaml:"price"`
	Summary map[string]interface{} `yaml:"summary"`
}

// ParseSeed reads a seed document into upsert parameters
func ParseSeed(r io.Reader) ([]UpsertParams, error) {
	var doc seedFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}

	params := make([]UpsertParams, 0, len(doc.Companies))
	for i, c := range doc.Companies {
		p := UpsertParams{Symbol: c.Symbol}
		if c.Price != "" {
			price, err := decimal.NewFromString(c.Price)
			if err != nil {
				return nil, fmt.Errorf("company %d (%s): invalid price %q: %w", i, c.Symbol, c.Price, err)
			}
			p.Price = price
		}
		if c.Summary != nil {
			raw, err := json.Marshal(c.Summary)
			if err != nil {
				return nil, fmt.Errorf("company %d (%s): failed to encode summary: %w", i, c.Symbol, err)
			}
			p.Summary = raw
		}
		p.Normalize()
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("company %d: %w", i, err)
		}
		params = append(params, p)
	}
	return params, nil
}
