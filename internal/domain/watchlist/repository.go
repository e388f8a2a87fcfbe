package watchlist

import (
	"context"

	"dynamite/internal/domain/market"
)

// Repository defines the interface for watchlist data access
type Repository interface {
	// ListCompanies returns the companies on the account's watchlist
	ListCompanies(ctx context.Context, accountID string) ([]*market.Company, error)

	// Add returns ErrAlreadyWatched on a duplicate and ErrNotFound without a watchlist
	Add(ctx context.Context, accountID string, company *market.Company) (*Item, error)

	// Remove returns ErrNotWatched when the company is not a member
	Remove(ctx context.Context, accountID, companyID string) error
}
