package http

import (
	"net/http"

	"go.uber.org/zap"

	"dynamite/internal/domain/market"
)

// MarketHandler serves company listings
type MarketHandler struct {
	market *market.Service
	logger *zap.Logger
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(market *market.Service, logger *zap.Logger) *MarketHandler {
	return &MarketHandler{market: market, logger: logger}
}

// HandleListCompanies returns every listed company with its quote digest
func (h *MarketHandler) HandleListCompanies(w http.ResponseWriter, r *http.Request) {
	listings, err := h.market.List(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, err, "failed to list companies")
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

// HandleGetCompany returns one company by its symbol path value
func (h *MarketHandler) HandleGetCompany(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	if symbol == "" {
		http.Error(w, "Symbol is required", http.StatusBadRequest)
		return
	}

	listing, err := h.market.Get(r.Context(), symbol)
	if err != nil {
		writeDomainError(w, h.logger.With(zap.String("symbol", symbol)), err, "failed to get company")
		return
	}
	writeJSON(w, http.StatusOK, listing)
}
