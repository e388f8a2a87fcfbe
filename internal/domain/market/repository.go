package market

import "context"

// Repository defines the interface for company data access
type Repository interface {
	// List returns companies ordered by symbol
	List(ctx context.Context) ([]*Company, error)

	// GetBySymbol returns ErrCompanyNotFound when the symbol is unknown
	GetBySymbol(ctx context.Context, symbol string) (*Company, error)

	// Upsert creates or replaces a company keyed by symbol
	Upsert(ctx context.Context, params UpsertParams) (*Company, error)
}
