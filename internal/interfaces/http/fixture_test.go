package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dynamite/internal/domain/account"
	"dynamite/internal/domain/ledger"
	"dynamite/internal/domain/market"
	"dynamite/internal/domain/transaction"
	"dynamite/internal/domain/watchlist"
	"dynamite/internal/infrastructure/memory"
	"dynamite/internal/shared/middleware"
)

const (
	testUser = "user_2abc"
	testCard = "4111111111111111"
)

type fixture struct {
	store        *memory.Store
	accounts     *account.Service
	ledger       *ledger.Service
	transactions *transaction.Service
	watchlists   *watchlist.Service
	market       *market.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	_, err := store.Companies().Upsert(ctx, market.UpsertParams{
		Symbol:  "AAPL",
		Price:   decimal.NewFromInt(100),
		Summary: json.RawMessage(`{"price":{"shortName":"Apple Inc."},"summaryProfile":{"sector":"Technology"}}`),
	})
	require.NoError(t, err)

	return &fixture{
		store:        store,
		accounts:     account.NewService(store.Accounts(), store.Cards()),
		ledger:       ledger.NewService(store, ledger.DefaultPolicy()),
		transactions: transaction.NewService(store.Transactions()),
		watchlists:   watchlist.NewService(store.Watchlists(), store.Companies()),
		market:       market.NewService(store.Companies()),
	}
}

// withCard ensures the test account and registers a card holding value
func (f *fixture) withCard(t *testing.T, value string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.accounts.Ensure(ctx, testUser)
	require.NoError(t, err)
	_, err = f.accounts.AddCard(ctx, account.CreateCardParams{
		AccountID:  testUser,
		CardDigits: testCard,
		HolderName: "Ada Lovelace",
		Value:      decimal.RequireFromString(value),
		Expiration: "12/29",
		Color:      "#1194F6",
	})
	require.NoError(t, err)
}

func newRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func serveHandler(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

var nopLogger = zap.NewNop()
