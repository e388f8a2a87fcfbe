package watchlist

import (
	"context"
	"fmt"

	"dynamite/internal/domain/market"
	"dynamite/internal/domain/transaction"
)

// Service contains the business logic for watchlists
type Service struct {
	repo      Repository
	companies market.Repository
}

// NewService creates a new watchlist service
func NewService(repo Repository, companies market.Repository) *Service {
	return &Service{repo: repo, companies: companies}
}

// List returns the companies the account watches
func (s *Service) List(ctx context.Context, accountID string) ([]*market.Listing, error) {
	companies, err := s.repo.ListCompanies(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return market.Listings(companies), nil
}

// Toggle adds the company when liked is true and removes it otherwise
func (s *Service) Toggle(ctx context.Context, accountID, symbol string, liked bool) error {
	symbol = transaction.NormalizeSymbol(symbol)
	if symbol == "" {
		return fmt.Errorf("%w: ticker is required", market.ErrInvalidCompany)
	}

	company, err := s.companies.GetBySymbol(ctx, symbol)
	if err != nil {
		return err
	}

	if liked {
		_, err = s.repo.Add(ctx, accountID, company)
		return err
	}
	return s.repo.Remove(ctx, accountID, company.ID)
}
