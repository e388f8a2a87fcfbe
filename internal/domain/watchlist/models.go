package watchlist

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrAlreadyWatched = errors.New("company already on watchlist")
	ErrNotWatched     = errors.New("company not on watchlist")
	ErrNotFound       = errors.New("watchlist not found")
)

// Item is a company on an account's watchlist
type Item struct {
	WatchlistID string    `json:"watchlistId"`
	CompanyID   string    `json:"companyId"`
	Symbol      string    `json:"symbol"`
	CreatedAt   time.Time `json:"createdAt"`
}
