package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"dynamite/internal/domain/ledger"
	"dynamite/internal/domain/transaction"
)

// mutation is the shape shared by the ledger operations
type mutation func(ctx context.Context, accountID, target string, amount decimal.Decimal) (*transaction.Transaction, error)

// TransactionHandler serves the transaction history and stock trades
type TransactionHandler struct {
	transactions *transaction.Service
	ledger       *ledger.Service
	logger       *zap.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactions *transaction.Service, ledger *ledger.Service, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{transactions: transactions, ledger: ledger, logger: logger}
}

// TradeRequest is the body of buy and sell
type TradeRequest struct {
	Transaction struct {
		Value  decimal.Decimal `json:"value"`
		Symbol string          `json:"symbol"`
	} `json:"transaction"`
}

// HandleListTransactions returns the caller's transactions, newest first.
// Optional limit and offset query parameters page the result.
func (h *TransactionHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		http.Error(w, "Invalid offset", http.StatusBadRequest)
		return
	}

	txs, err := h.transactions.History(r.Context(), userID, limit, offset)
	if err != nil {
		writeDomainError(w, h.logger.With(zap.String("account_id", userID)), err, "failed to list transactions")
		return
	}

	writeJSON(w, http.StatusOK, txs)
}

// HandleBuy buys shares of a company for the given amount
func (h *TransactionHandler) HandleBuy(w http.ResponseWriter, r *http.Request) {
	h.handleTrade(w, r, "buy", h.ledger.Buy)
}

// HandleSell sells shares of a company worth the given amount
func (h *TransactionHandler) HandleSell(w http.ResponseWriter, r *http.Request) {
	h.handleTrade(w, r, "sell", h.ledger.Sell)
}

func (h *TransactionHandler) handleTrade(w http.ResponseWriter, r *http.Request, op string, trade mutation) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req TradeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, h.logger, err, "invalid "+op+" body")
		return
	}

	record, err := trade(r.Context(), userID, req.Transaction.Symbol, req.Transaction.Value)
	if err != nil {
		writeDomainError(w, h.logger.With(
			zap.String("account_id", userID),
			zap.String("operation", op),
			zap.String("symbol", req.Transaction.Symbol),
		), err, op+" failed")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}
