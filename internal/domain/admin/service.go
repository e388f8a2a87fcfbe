package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dynamite/internal/domain/account"
	"dynamite/internal/domain/market"
	"dynamite/internal/domain/transaction"
	"dynamite/internal/domain/watchlist"
	"dynamite/internal/shared/auth"
)

// Subject is the token subject of an authenticated administrator
const Subject = "admin"

// Domain errors
var (
	ErrInvalidKey   = errors.New("incorrect key")
	ErrUnauthorized = errors.New("admin token required")
	ErrDisabled     = errors.New("admin access is not configured")
)

// AccountOverview is everything the admin panel shows for one account
type AccountOverview struct {
	*account.Account
	Watchlist    []*market.Company          `json:"watchlist"`
	Cards        []*account.Card            `json:"cards"`
	Transactions []*transaction.Transaction `json:"transactions"`
}

// Service authenticates administrators and assembles the account overview
type Service struct {
	keyHash      string
	signer       *auth.Signer
	verifier     *auth.Verifier
	accounts     account.Repository
	cards        account.CardRepository
	watchlists   watchlist.Repository
	transactions transaction.Repository
}

// Config holds the admin credentials
type Config struct {
	KeyHash     string
	TokenSecret string
	TokenTTL    time.Duration
	Issuer      string
}

// NewService creates a new admin service. An empty key hash disables authentication.
func NewService(cfg Config, accounts account.Repository, cards account.CardRepository, watchlists watchlist.Repository, transactions transaction.Repository) *Service {
	return &Service{
		keyHash:      cfg.KeyHash,
		signer:       auth.NewSigner(cfg.TokenSecret, cfg.Issuer, Subject, cfg.TokenTTL),
		verifier:     auth.NewHMACVerifier(cfg.TokenSecret, cfg.Issuer, Subject),
		accounts:     accounts,
		cards:        cards,
		watchlists:   watchlists,
		transactions: transactions,
	}
}

// Authenticate checks key and issues an admin token
func (s *Service) Authenticate(ctx context.Context, key string) (string, time.Time, error) {
	if s.keyHash == "" {
		return "", time.Time{}, ErrDisabled
	}
	if err := auth.VerifySecret(s.keyHash, key); err != nil {
		if errors.Is(err, auth.ErrSecretMismatch) {
			return "", time.Time{}, ErrInvalidKey
		}
		return "", time.Time{}, fmt.Errorf("failed to verify admin key: %w", err)
	}
	return s.signer.Sign(Subject)
}

// VerifyToken checks an admin token issued by Authenticate
func (s *Service) VerifyToken(token string) error {
	if s.keyHash == "" {
		return ErrDisabled
	}
	if token == "" {
		return ErrUnauthorized
	}
	claims, err := s.verifier.Verify(token)
	if err != nil || claims.Subject != Subject {
		return ErrUnauthorized
	}
	return nil
}

// Overview returns every account with portfolio, watchlist, cards and transactions
func (s *Service) Overview(ctx context.Context) ([]*AccountOverview, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	out := make([]*AccountOverview, 0, len(accounts))
	for _, a := range accounts {
		ov := &AccountOverview{Account: a}
		if ov.Watchlist, err = s.watchlists.ListCompanies(ctx, a.ID); err != nil {
			return nil, fmt.Errorf("failed to list watchlist of %s: %w", a.ID, err)
		}
		if ov.Cards, err = s.cards.ListByAccountID(ctx, a.ID); err != nil {
			return nil, fmt.Errorf("failed to list cards of %s: %w", a.ID, err)
		}
		if ov.Transactions, err = s.transactions.ListByAccountID(ctx, a.ID, 0, 0); err != nil {
			return nil, fmt.Errorf("failed to list transactions of %s: %w", a.ID, err)
		}
		out = append(out, ov)
	}
	return out, nil
}
