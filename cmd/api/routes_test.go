package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dynamite/internal/shared/auth"
	"dynamite/internal/shared/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverMemory},
		Auth:     config.AuthConfig{DevSecret: "dev-secret", SessionCookie: "__session"},
		Admin:    config.AdminConfig{TokenTTL: time.Hour},
		Ledger: config.LedgerConfig{
			MinBuyAmount:   decimal.NewFromInt(50),
			HoldingEpsilon: decimal.RequireFromString("0.1"),
			SellTolerance:  decimal.RequireFromString("0.005"),
		},
	}
}

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	return newTestServerWithConfig(t, testConfig())
}

func newTestServerWithConfig(t *testing.T, cfg *config.Config) (*httptest.Server, string) {
	t.Helper()
	deps, err := NewDependencies(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(deps.Close)

	srv := httptest.NewServer(SetupRoutes(deps, cfg, zap.NewNop()))
	t.Cleanup(srv.Close)

	token, _, err := auth.NewSigner("dev-secret", "", "", time.Hour).Sign("user_routes")
	require.NoError(t, err)
	return srv, token
}

func do(t *testing.T, srv *httptest.Server, method, path, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRoutes_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRoutes_RequireIdentity(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/api/account", "/api/card", "/api/portfolio", "/api/watchlist", "/api/transaction", "/api/market"} {
		resp := do(t, srv, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestRoutes_CardFlow(t *testing.T) {
	srv, token := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/api/account", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/api/card/add", token,
		`{"data":{"name":"Ada","cardNumber":"4111111111111111","value":300,"expiryDate":"12/29"},"color":"#000"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, srv, http.MethodPatch, "/api/card/deposit", token, `{"cardNum":"4111111111111111","value":100}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, srv, http.MethodPatch, "/api/card/deposit", token, `{"cardNum":"4111111111111111","value":1000}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	srv, token := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/api/card/deposit", token, "")

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRoutes_AdminDisabledWithoutKey(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/api/admin/authenticate", "", `{"values":{"username":"x"}}`)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRoutes_AdminOverviewNeedsIdentityAndAdminToken(t *testing.T) {
	hash, err := auth.HashSecret("admin-key")
	require.NoError(t, err)
	cfg := testConfig()
	cfg.Admin.KeyHash = hash
	cfg.Admin.TokenSecret = "admin-token-secret"
	srv, token := newTestServerWithConfig(t, cfg)

	login := do(t, srv, http.MethodPost, "/api/admin/authenticate", "", `{"values":{"username":"admin-key"}}`)
	require.Equal(t, http.StatusOK, login.StatusCode)
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(login.Body).Decode(&body))
	require.NotEmpty(t, body.Token)

	overview := func(identity, adminToken string) int {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/admin", nil)
		require.NoError(t, err)
		if identity != "" {
			req.Header.Set("Authorization", "Bearer "+identity)
		}
		if adminToken != "" {
			req.Header.Set("X-Admin-Token", adminToken)
		}
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusUnauthorized, overview("", body.Token), "admin token alone")
	assert.Equal(t, http.StatusUnauthorized, overview(token, ""), "identity alone")
	assert.Equal(t, http.StatusOK, overview(token, body.Token))
}

func TestRoutes_ChatWithoutAssistant(t *testing.T) {
	srv, token := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/api/chat", token, `{"messages":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
