package watchlist_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynamite/internal/domain/market"
	"dynamite/internal/domain/watchlist"
	"dynamite/internal/infrastructure/memory"
)

func newService(t *testing.T) *watchlist.Service {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	_, err := store.Accounts().Ensure(ctx, "user_1")
	require.NoError(t, err)
	for _, symbol := range []string{"AAPL", "MSFT"} {
		_, err := store.Companies().Upsert(ctx, market.UpsertParams{Symbol: symbol, Price: decimal.NewFromInt(10)})
		require.NoError(t, err)
	}
	return watchlist.NewService(store.Watchlists(), store.Companies())
}

func symbols(t *testing.T, svc *watchlist.Service) []string {
	t.Helper()
	list, err := svc.List(context.Background(), "user_1")
	require.NoError(t, err)
	out := []string{}
	for _, l := range list {
		out = append(out, l.Symbol)
	}
	return out
}

func TestToggle_RoundTripRestoresMembership(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Toggle(ctx, "user_1", "aapl", true))
	assert.Equal(t, []string{"AAPL"}, symbols(t, svc))

	require.NoError(t, svc.Toggle(ctx, "user_1", "AAPL", false))
	assert.Empty(t, symbols(t, svc))
}

func TestToggle_Errors(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Toggle(ctx, "user_1", "MSFT", true))

	tests := []struct {
		name    string
		account string
		symbol  string
		liked   bool
		wantErr error
	}{
		{"duplicate add", "user_1", "MSFT", true, watchlist.ErrAlreadyWatched},
		{"remove non-member", "user_1", "AAPL", false, watchlist.ErrNotWatched},
		{"unknown company", "user_1", "ZZZZ", true, market.ErrCompanyNotFound},
		{"blank ticker", "user_1", " ", true, market.ErrInvalidCompany},
		{"account without watchlist", "user_ghost", "AAPL", true, watchlist.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Toggle(ctx, tt.account, tt.symbol, tt.liked)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Equal(t, []string{"MSFT"}, symbols(t, svc))
}
