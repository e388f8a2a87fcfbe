package transaction

import "context"

// Recorder appends audit records. There is no update or delete.
type Recorder interface {
	Append(ctx context.Context, params CreateParams) (*Transaction, error)
}

// Repository defines the interface for reading the audit log
type Repository interface {
	// ListByAccountID returns records newest first; limit <= 0 means no limit
	ListByAccountID(ctx context.Context, accountID string, limit, offset int) ([]*Transaction, error)
}
