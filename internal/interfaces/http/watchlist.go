package http

import (
	"net/http"

	"go.uber.org/zap"

	"dynamite/internal/domain/watchlist"
)

// WatchlistHandler serves the caller's default watchlist
type WatchlistHandler struct {
	watchlists *watchlist.Service
	logger     *zap.Logger
}

// NewWatchlistHandler creates a new watchlist handler
func NewWatchlistHandler(watchlists *watchlist.Service, logger *zap.Logger) *WatchlistHandler {
	return &WatchlistHandler{watchlists: watchlists, logger: logger}
}

// ToggleWatchlistRequest adds (isLiked) or removes a ticker
type ToggleWatchlistRequest struct {
	IsLiked bool   `json:"isLiked"`
	Ticker  string `json:"ticker"`
}

// HandleListWatchlist returns the companies on the caller's watchlist
func (h *WatchlistHandler) HandleListWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	listings, err := h.watchlists.List(r.Context(), userID)
	if err != nil {
		writeDomainError(w, h.logger.With(zap.String("account_id", userID)), err, "failed to list watchlist")
		return
	}

	writeJSON(w, http.StatusOK, listings)
}

// HandleToggleWatchlist adds or removes a company
func (h *WatchlistHandler) HandleToggleWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req ToggleWatchlistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, h.logger, err, "invalid watchlist body")
		return
	}

	if err := h.watchlists.Toggle(r.Context(), userID, req.Ticker, req.IsLiked); err != nil {
		writeDomainError(w, h.logger.With(zap.String("account_id", userID), zap.String("ticker", req.Ticker)), err, "failed to toggle watchlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "PATCH watchlist successful"})
}
