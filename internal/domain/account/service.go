package account

import (
	"context"
	"fmt"
)

// Service contains the business logic for accounts, portfolios and cards
type Service struct {
	repo  Repository
	cards CardRepository
}

// NewService creates a new account service
func NewService(repo Repository, cards CardRepository) *Service {
	return &Service{repo: repo, cards: cards}
}

// Ensure returns the caller's account, creating it on first sight
func (s *Service) Ensure(ctx context.Context, accountID string) (*Account, error) {
	if accountID == "" {
		return nil, fmt.Errorf("%w: account ID is required", ErrInvalidInput)
	}
	return s.repo.Ensure(ctx, accountID)
}

// Get retrieves an account with its portfolio
func (s *Service) Get(ctx context.Context, accountID string) (*Account, error) {
	return s.repo.GetByID(ctx, accountID)
}

// List retrieves every account
func (s *Service) List(ctx context.Context) ([]*Account, error) {
	return s.repo.List(ctx)
}

// Portfolio retrieves the caller's portfolio
func (s *Service) Portfolio(ctx context.Context, accountID string) (*Portfolio, error) {
	return s.repo.GetPortfolio(ctx, accountID)
}

// ListCards retrieves the caller's cards
func (s *Service) ListCards(ctx context.Context, accountID string) ([]*Card, error) {
	return s.cards.ListByAccountID(ctx, accountID)
}

// AddCard validates and registers a VISA card for the caller
func (s *Service) AddCard(ctx context.Context, params CreateCardParams) (*Card, error) {
	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// The account row must exist before a card can reference it
	if _, err := s.repo.GetByID(ctx, params.AccountID); err != nil {
		return nil, err
	}

	return s.cards.Create(ctx, params)
}

// RemoveCard deletes one of the caller's cards
func (s *Service) RemoveCard(ctx context.Context, accountID, cardDigits string) error {
	cardDigits = NormalizeCardDigits(cardDigits)
	if cardDigits == "" {
		return fmt.Errorf("%w: card number is required", ErrInvalidInput)
	}
	return s.cards.Delete(ctx, accountID, cardDigits)
}
