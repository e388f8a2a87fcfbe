package main

import (
	"net/http"

	"go.uber.org/zap"

	"dynamite/internal/shared/config"
	"dynamite/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", deps.HealthHandler.HandleHealth)

	// Public routes
	mux.HandleFunc("POST /api/admin/authenticate", deps.AdminHandler.HandleAuthenticate)

	// Protected routes
	authMiddleware := middleware.Auth(deps.Verifier, cfg.Auth.SessionCookie)
	protect := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}

	// The overview needs a signed-in caller and an admin token
	mux.Handle("GET /api/admin", protect(deps.AdminHandler.HandleOverview))

	mux.Handle("GET /api/account", protect(deps.AccountHandler.HandleGetAccount))
	mux.Handle("GET /api/portfolio", protect(deps.AccountHandler.HandleGetPortfolio))

	mux.Handle("GET /api/card", protect(deps.CardHandler.HandleListCards))
	mux.Handle("POST /api/card/add", protect(deps.CardHandler.HandleAddCard))
	mux.Handle("POST /api/card/remove", protect(deps.CardHandler.HandleRemoveCard))
	mux.Handle("PATCH /api/card/deposit", protect(deps.CardHandler.HandleDeposit))
	mux.Handle("PATCH /api/card/withdraw", protect(deps.CardHandler.HandleWithdraw))

	mux.Handle("GET /api/watchlist", protect(deps.WatchlistHandler.HandleListWatchlist))
	mux.Handle("PATCH /api/watchlist", protect(deps.WatchlistHandler.HandleToggleWatchlist))

	mux.Handle("GET /api/transaction", protect(deps.TransactionHandler.HandleListTransactions))
	mux.Handle("PATCH /api/transaction/buy", protect(deps.TransactionHandler.HandleBuy))
	mux.Handle("PATCH /api/transaction/sell", protect(deps.TransactionHandler.HandleSell))

	mux.Handle("GET /api/market", protect(deps.MarketHandler.HandleListCompanies))
	mux.Handle("GET /api/market/{symbol}", protect(deps.MarketHandler.HandleGetCompany))

	mux.Handle("POST /api/chat", protect(deps.ChatHandler.HandleChat))

	// Apply global middleware
	handler := middleware.Logging(logger)(middleware.CORS(cfg.Server.AllowedHosts)(mux))
	handler = middleware.Tracing(handler)

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		logger.Info("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(handler)
	}

	return handler
}
