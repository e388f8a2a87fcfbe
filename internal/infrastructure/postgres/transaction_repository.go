package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"dynamite/internal/domain/transaction"
)

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// ListByAccountID returns the account's records, newest first
func (r *TransactionRepository) ListByAccountID(ctx context.Context, accountID string, limit, offset int) ([]*transaction.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, type, amount, status, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2 OFFSET $3
	`, accountID, nullLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txs := []*transaction.Transaction{}
	for rows.Next() {
		var t transaction.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Type, &t.Amount, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txs, nil
}

// appendTransaction writes one audit record through q
func appendTransaction(ctx context.Context, q querier, params transaction.CreateParams) (*transaction.Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	t := transaction.Transaction{
		ID:        uuid.NewString(),
		AccountID: params.AccountID,
		Type:      params.Type,
		Amount:    params.Amount,
		Status:    params.Status,
	}
	err := q.QueryRowContext(ctx, `
		INSERT INTO transactions (id, account_id, type, amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, t.ID, t.AccountID, t.Type, t.Amount, string(t.Status)).Scan(&t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}
	return &t, nil
}
