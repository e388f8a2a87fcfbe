package http

import (
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"dynamite/internal/domain/account"
	"dynamite/internal/domain/ledger"
)

// CardHandler manages virtual cards and moves money between cards and the account
type CardHandler struct {
	accounts *account.Service
	ledger   *ledger.Service
	logger   *zap.Logger
}

// NewCardHandler creates a new card handler
func NewCardHandler(accounts *account.Service, ledger *ledger.Service, logger *zap.Logger) *CardHandler {
	return &CardHandler{accounts: accounts, ledger: ledger, logger: logger}
}

type cardFields struct {
	Name       string          `json:"name"`
	CardNumber string          `json:"cardNumber"`
	Value      decimal.Decimal `json:"value"`
	ExpiryDate string          `json:"expiryDate"`
	Color      string          `json:"color"`
}

// AddCardRequest accepts the form payload nested under data, or flat
type AddCardRequest struct {
	Data *cardFields `json:"data"`
	cardFields
}

func (req AddCardRequest) fields() cardFields {
	if req.Data == nil {
		return req.cardFields
	}
	f := *req.Data
	if f.Color == "" {
		f.Color = req.Color
	}
	return f
}

// CardAmountRequest is the body of deposit and withdraw
type CardAmountRequest struct {
	CardNum string          `json:"cardNum"`
	Value   decimal.Decimal `json:"value"`
}

// RemoveCardRequest is the body of card removal
type RemoveCardRequest struct {
	CardNum string `json:"cardNum"`
}

// HandleListCards returns the caller's cards
func (h *CardHandler) HandleListCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	cards, err := h.accounts.ListCards(r.Context(), userID)
	if err != nil {
		writeDomainError(w, h.logger, err, "failed to list cards")
		return
	}

	writeJSON(w, http.StatusOK, cards)
}

// HandleAddCard registers a card for the caller
func (h *CardHandler) HandleAddCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req AddCardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, h.logger, err, "invalid add card body")
		return
	}
	f := req.fields()

	card, err := h.accounts.AddCard(r.Context(), account.CreateCardParams{
		AccountID:  userID,
		CardDigits: f.CardNumber,
		HolderName: f.Name,
		Value:      f.Value,
		Expiration: f.ExpiryDate,
		Color:      f.Color,
	})
	if err != nil {
		writeDomainError(w, h.logger.With(zap.String("account_id", userID)), err, "failed to add card")
		return
	}

	writeJSON(w, http.StatusCreated, card)
}

// HandleRemoveCard deletes one of the caller's cards
func (h *CardHandler) HandleRemoveCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req RemoveCardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, h.logger, err, "invalid remove card body")
		return
	}

	if err := h.accounts.RemoveCard(r.Context(), userID, req.CardNum); err != nil {
		writeDomainError(w, h.logger.With(zap.String("account_id", userID)), err, "failed to remove card")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Delete card successfully"})
}

// HandleDeposit moves money from a card into the account
func (h *CardHandler) HandleDeposit(w http.ResponseWriter, r *http.Request) {
	h.handleTransfer(w, r, "deposit", h.ledger.Deposit)
}

// HandleWithdraw moves money from the account onto a card
func (h *CardHandler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	h.handleTransfer(w, r, "withdraw", h.ledger.Withdraw)
}

func (h *CardHandler) handleTransfer(w http.ResponseWriter, r *http.Request, op string, move mutation) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CardAmountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, h.logger, err, "invalid "+op+" body")
		return
	}

	record, err := move(r.Context(), userID, account.NormalizeCardDigits(req.CardNum), req.Value)
	if err != nil {
		writeDomainError(w, h.logger.With(zap.String("account_id", userID), zap.String("operation", op)), err, op+" failed")
		return
	}

	writeJSON(w, http.StatusOK, record)
}
