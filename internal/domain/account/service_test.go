package account

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

// MockRepository is a mock implementation of Repository interface
type MockRepository struct {
	EnsureFunc       func(ctx context.Context, id string) (*Account, error)
	GetByIDFunc      func(ctx context.Context, id string) (*Account, error)
	ListFunc         func(ctx context.Context) ([]*Account, error)
	GetPortfolioFunc func(ctx context.Context, accountID string) (*Portfolio, error)
}

func (m *MockRepository) Ensure(ctx context.Context, id string) (*Account, error) {
	if m.EnsureFunc != nil {
		return m.EnsureFunc(ctx, id)
	}
	return &Account{ID: id}, nil
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return &Account{ID: id}, nil
}

func (m *MockRepository) List(ctx context.Context) ([]*Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockRepository) GetPortfolio(ctx context.Context, accountID string) (*Portfolio, error) {
	if m.GetPortfolioFunc != nil {
		return m.GetPortfolioFunc(ctx, accountID)
	}
	return &Portfolio{AccountID: accountID}, nil
}

// MockCardRepository is a mock implementation of CardRepository interface
type MockCardRepository struct {
	ListByAccountIDFunc func(ctx context.Context, accountID string) ([]*Card, error)
	CreateFunc          func(ctx context.Context, params CreateCardParams) (*Card, error)
	DeleteFunc          func(ctx context.Context, accountID, cardDigits string) error
}

func (m *MockCardRepository) ListByAccountID(ctx context.Context, accountID string) ([]*Card, error) {
	if m.ListByAccountIDFunc != nil {
		return m.ListByAccountIDFunc(ctx, accountID)
	}
	return nil, nil
}

func (m *MockCardRepository) Create(ctx context.Context, params CreateCardParams) (*Card, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &Card{AccountID: params.AccountID, CardDigits: params.CardDigits, Type: CardTypeVisa}, nil
}

func (m *MockCardRepository) Delete(ctx context.Context, accountID, cardDigits string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, accountID, cardDigits)
	}
	return nil
}

func validCard() CreateCardParams {
	return CreateCardParams{
		AccountID:  "user_1",
		CardDigits: "4111 1111 1111 1111",
		HolderName: " Ada Lovelace ",
		Value:      decimal.NewFromInt(300),
		Expiration: "09/28",
		Color:      "#1f2937",
	}
}

func TestService_AddCard(t *testing.T) {
	t.Run("normalizes and creates", func(t *testing.T) {
		var got CreateCardParams
		cards := &MockCardRepository{
			CreateFunc: func(ctx context.Context, params CreateCardParams) (*Card, error) {
				got = params
				return &Card{CardDigits: params.CardDigits}, nil
			},
		}
		svc := NewService(&MockRepository{}, cards)

		if _, err := svc.AddCard(context.Background(), validCard()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.CardDigits != "4111111111111111" {
			t.Errorf("expected separators stripped, got %q", got.CardDigits)
		}
		if got.HolderName != "Ada Lovelace" {
			t.Errorf("expected trimmed holder name, got %q", got.HolderName)
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		repo := &MockRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*Account, error) {
				return nil, ErrAccountNotFound
			},
		}
		svc := NewService(repo, &MockCardRepository{})

		if _, err := svc.AddCard(context.Background(), validCard()); !errors.Is(err, ErrAccountNotFound) {
			t.Errorf("expected ErrAccountNotFound, got %v", err)
		}
	})

	t.Run("duplicate surfaces", func(t *testing.T) {
		cards := &MockCardRepository{
			CreateFunc: func(ctx context.Context, params CreateCardParams) (*Card, error) {
				return nil, ErrDuplicateCard
			},
		}
		svc := NewService(&MockRepository{}, cards)

		if _, err := svc.AddCard(context.Background(), validCard()); !errors.Is(err, ErrDuplicateCard) {
			t.Errorf("expected ErrDuplicateCard, got %v", err)
		}
	})
}

func TestCreateCardParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *CreateCardParams)
	}{
		{"missing holder", func(p *CreateCardParams) { p.HolderName = "" }},
		{"short number", func(p *CreateCardParams) { p.CardDigits = "411111111111111" }},
		{"letters in number", func(p *CreateCardParams) { p.CardDigits = "4111a11111111111" }},
		{"bad month", func(p *CreateCardParams) { p.Expiration = "13/28" }},
		{"bad expiry format", func(p *CreateCardParams) { p.Expiration = "2028-09" }},
		{"negative value", func(p *CreateCardParams) { p.Value = decimal.NewFromInt(-1) }},
		{"missing color", func(p *CreateCardParams) { p.Color = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validCard()
			p.Normalize()
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestService_RemoveCard(t *testing.T) {
	svc := NewService(&MockRepository{}, &MockCardRepository{
		DeleteFunc: func(ctx context.Context, accountID, cardDigits string) error {
			if accountID != "user_1" || cardDigits != "4111111111111111" {
				return ErrCardNotFound
			}
			return nil
		},
	})

	if err := svc.RemoveCard(context.Background(), "user_1", " 4111111111111111 "); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := svc.RemoveCard(context.Background(), "user_2", "4111111111111111"); !errors.Is(err, ErrCardNotFound) {
		t.Errorf("expected ErrCardNotFound, got %v", err)
	}
	if err := svc.RemoveCard(context.Background(), "user_1", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Ensure(t *testing.T) {
	svc := NewService(&MockRepository{}, &MockCardRepository{})

	if _, err := svc.Ensure(context.Background(), ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty id, got %v", err)
	}
	acc, err := svc.Ensure(context.Background(), "user_1")
	if err != nil || acc.ID != "user_1" {
		t.Errorf("Ensure() = %v, %v", acc, err)
	}
}

func TestHolding_MarketValue(t *testing.T) {
	h := Holding{Shares: decimal.RequireFromString("2.5"), Price: decimal.NewFromInt(40)}
	if !h.MarketValue().Equal(decimal.NewFromInt(100)) {
		t.Errorf("MarketValue() = %s, want 100", h.MarketValue())
	}
}
