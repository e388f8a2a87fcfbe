package account

import "context"

// Repository defines the interface for account data access
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Repository interface {
	// Ensure creates the account with an empty portfolio and the default watchlist when absent
	Ensure(ctx context.Context, id string) (*Account, error)

	// GetByID retrieves an account with its portfolio and holdings
	GetByID(ctx context.Context, id string) (*Account, error)

	// List retrieves every account with its portfolio and holdings
	List(ctx context.Context) ([]*Account, error)

	// GetPortfolio retrieves the portfolio of an account with holdings priced at the company price
	GetPortfolio(ctx context.Context, accountID string) (*Portfolio, error)
}

// CardRepository defines the interface for card data access
type CardRepository interface {
	ListByAccountID(ctx context.Context, accountID string) ([]*Card, error)

	// Create returns ErrDuplicateCard when the digits are already registered
	Create(ctx context.Context, params CreateCardParams) (*Card, error)

	// Delete removes a card owned by the account, ErrCardNotFound otherwise
	Delete(ctx context.Context, accountID, cardDigits string) error
}
