package market

import (
	"context"

	"dynamite/internal/domain/transaction"
)

// Service contains the business logic for market data
type Service struct {
	repo Repository
}

// NewService creates a new market service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every company with its quote digest
func (s *Service) List(ctx context.Context) ([]*Listing, error) {
	companies, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return Listings(companies), nil
}

// Get returns one company with its quote digest
func (s *Service) Get(ctx context.Context, symbol string) (*Listing, error) {
	c, err := s.repo.GetBySymbol(ctx, transaction.NormalizeSymbol(symbol))
	if err != nil {
		return nil, err
	}
	return &Listing{Company: c, Quote: c.Digest()}, nil
}

// Seed upserts companies by symbol and returns how many were written
func (s *Service) Seed(ctx context.Context, params []UpsertParams) (int, error) {
	n := 0
	for _, p := range params {
		p.Normalize()
		if err := p.Validate(); err != nil {
			return n, err
		}
		if _, err := s.repo.Upsert(ctx, p); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Listings attaches quote digests to companies
func Listings(companies []*Company) []*Listing {
	out := make([]*Listing, 0, len(companies))
	for _, c := range companies {
		out = append(out, &Listing{Company: c, Quote: c.Digest()})
	}
	return out
}
