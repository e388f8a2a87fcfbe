package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"dynamite/internal/domain/account"
	"dynamite/internal/domain/admin"
	"dynamite/internal/domain/chat"
	"dynamite/internal/domain/ledger"
	"dynamite/internal/domain/market"
	"dynamite/internal/domain/watchlist"
	"dynamite/internal/shared/middleware"
)

const maxBodyBytes = 1 << 20

var errMalformedBody = errors.New("malformed request body")

// statusFor maps domain errors to HTTP status codes. Unknown errors are internal.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrPriceUnavailable),
		errors.Is(err, account.ErrInvalidInput),
		errors.Is(err, market.ErrInvalidCompany),
		errors.Is(err, chat.ErrMessagesRequired),
		errors.Is(err, chat.ErrInvalidRole),
		errors.Is(err, admin.ErrInvalidKey),
		errors.Is(err, errMalformedBody):
		return http.StatusBadRequest
	case errors.Is(err, admin.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, admin.ErrDisabled):
		return http.StatusForbidden
	case errors.Is(err, account.ErrAccountNotFound),
		errors.Is(err, account.ErrCardNotFound),
		errors.Is(err, account.ErrHoldingNotFound),
		errors.Is(err, market.ErrCompanyNotFound),
		errors.Is(err, watchlist.ErrNotWatched),
		errors.Is(err, watchlist.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, account.ErrDuplicateCard),
		errors.Is(err, watchlist.ErrAlreadyWatched):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError answers with the mapped status. Internal errors are logged
// and answered with a generic body, except a missing chat assistant which is
// reported as such.
func writeDomainError(w http.ResponseWriter, logger *zap.Logger, err error, msg string) {
	status := statusFor(err)
	if status != http.StatusInternalServerError {
		http.Error(w, err.Error(), status)
		return
	}

	logger.Error(msg, zap.Error(err))
	if errors.Is(err, chat.ErrNotConfigured) {
		http.Error(w, err.Error(), status)
		return
	}
	http.Error(w, "Internal error", status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errMalformedBody)
		}
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

// requireUser reads the account id stored by the auth middleware
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}
