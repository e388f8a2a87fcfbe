package http

import (
	"net/http"

	"go.uber.org/zap"

	"dynamite/internal/domain/account"
)

// AccountHandler serves the caller's account and portfolio
type AccountHandler struct {
	accounts *account.Service
	logger   *zap.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts *account.Service, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

// HandleGetAccount returns the caller's account, creating it on first access
func (h *AccountHandler) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	acc, err := h.accounts.Ensure(r.Context(), userID)
	if err != nil {
		writeDomainError(w, h.logger.With(zap.String("account_id", userID)), err, "failed to ensure account")
		return
	}

	writeJSON(w, http.StatusOK, acc)
}

// HandleGetPortfolio returns the caller's portfolio with priced holdings
func (h *AccountHandler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	portfolio, err := h.accounts.Portfolio(r.Context(), userID)
	if err != nil {
		writeDomainError(w, h.logger.With(zap.String("account_id", userID)), err, "failed to load portfolio")
		return
	}

	writeJSON(w, http.StatusOK, portfolio)
}
