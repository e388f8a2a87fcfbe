package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"dynamite/internal/domain/account"
)

// CardRepository implements the account.CardRepository interface for PostgreSQL
type CardRepository struct {
	db *DB
}

// NewCardRepository creates a new PostgreSQL card repository
func NewCardRepository(db *DB) *CardRepository {
	return &CardRepository{db: db}
}

const cardColumns = `id, account_id, card_digits, holder_name, value, expiration, color, type, created_at`

func scanCard(row interface{ Scan(...any) error }) (*account.Card, error) {
	var c account.Card
	err := row.Scan(&c.ID, &c.AccountID, &c.CardDigits, &c.HolderName, &c.Value, &c.Expiration, &c.Color, &c.Type, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByAccountID retrieves the account's cards, oldest first
func (r *CardRepository) ListByAccountID(ctx context.Context, accountID string) ([]*account.Card, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE account_id = $1 ORDER BY created_at, card_digits`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	cards := []*account.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}
	return cards, nil
}

// Create registers a card
func (r *CardRepository) Create(ctx context.Context, params account.CreateCardParams) (*account.Card, error) {
	c, err := scanCard(r.db.QueryRowContext(ctx, `
		INSERT INTO cards (id, account_id, card_digits, holder_name, value, expiration, color, type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+cardColumns,
		uuid.NewString(), params.AccountID, params.CardDigits, params.HolderName,
		params.Value, params.Expiration, params.Color, account.CardTypeVisa,
	))
	switch {
	case isUniqueViolation(err):
		return nil, account.ErrDuplicateCard
	case isForeignKeyViolation(err):
		return nil, account.ErrAccountNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to create card: %w", err)
	}
	return c, nil
}

// Delete removes one of the account's cards
func (r *CardRepository) Delete(ctx context.Context, accountID, cardDigits string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM cards WHERE account_id = $1 AND card_digits = $2`, accountID, cardDigits)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return account.ErrCardNotFound
	}
	return nil
}
