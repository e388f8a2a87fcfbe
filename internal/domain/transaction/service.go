package transaction

import "context"

// MaxPageSize caps the number of records returned by one history request
const MaxPageSize = 500

// Service exposes the audit log to callers
type Service struct {
	repo Repository
}

// NewService creates a new transaction service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// History returns the account's records, most recent first
func (s *Service) History(ctx context.Context, accountID string, limit, offset int) ([]*Transaction, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	txs, err := s.repo.ListByAccountID(ctx, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []*Transaction{}
	}
	return txs, nil
}
