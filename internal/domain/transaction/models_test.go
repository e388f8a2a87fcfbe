package transaction

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTradeLabels(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"buy upper-cases", BuyType("aapl"), "buy AAPL"},
		{"buy trims", BuyType("  msft "), "buy MSFT"},
		{"sell", SellType("TSLA"), "sell TSLA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestSymbol(t *testing.T) {
	tests := []struct {
		label  string
		want   string
		wantOK bool
	}{
		{"buy AAPL", "AAPL", true},
		{"sell NVDA", "NVDA", true},
		{TypeDeposit, "", false},
		{TypeWithdraw, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := Symbol(tt.label)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Symbol(%q) = (%q, %v), want (%q, %v)", tt.label, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCreateParamsValidate(t *testing.T) {
	valid := CreateParams{AccountID: "user_1", Type: TypeDeposit, Amount: decimal.NewFromInt(10), Status: StatusSuccess}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid params, got %v", err)
	}

	noAccount := valid
	noAccount.AccountID = ""
	if err := noAccount.Validate(); err != ErrInvalidRecord {
		t.Errorf("expected ErrInvalidRecord for missing account, got %v", err)
	}

	badStatus := valid
	badStatus.Status = "pending"
	if err := badStatus.Validate(); err != ErrInvalidRecord {
		t.Errorf("expected ErrInvalidRecord for unknown status, got %v", err)
	}
}
