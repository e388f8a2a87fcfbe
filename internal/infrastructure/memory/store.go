// Package memory keeps the ledger in process memory. It backs local runs and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"dynamite/internal/domain/account"
	"dynamite/internal/domain/ledger"
	"dynamite/internal/domain/market"
	"dynamite/internal/domain/transaction"
	"dynamite/internal/domain/watchlist"
)

type watchlistRow struct {
	id        string
	accountID string
	name      string
}

// state is the whole dataset. Units of work run against a clone.
type state struct {
	accounts     map[string]account.Account            // by account id
	portfolios   map[string]account.Portfolio          // by account id
	holdings     map[string]map[string]account.Holding // portfolio id -> company id
	cards        map[string]account.Card               // by card digits
	companies    map[string]market.Company             // by symbol
	watchlists   map[string]watchlistRow               // by account id
	items        map[string]map[string]watchlist.Item  // watchlist id -> company id
	transactions []transaction.Transaction             // append order
}

func newState() *state {
	return &state{
		accounts:   make(map[string]account.Account),
		portfolios: make(map[string]account.Portfolio),
		holdings:   make(map[string]map[string]account.Holding),
		cards:      make(map[string]account.Card),
		companies:  make(map[string]market.Company),
		watchlists: make(map[string]watchlistRow),
		items:      make(map[string]map[string]watchlist.Item),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.portfolios {
		c.portfolios[k] = v
	}
	for k, m := range s.holdings {
		inner := make(map[string]account.Holding, len(m))
		for ck, h := range m {
			inner[ck] = h
		}
		c.holdings[k] = inner
	}
	for k, v := range s.cards {
		c.cards[k] = v
	}
	for k, v := range s.companies {
		c.companies[k] = v
	}
	for k, v := range s.watchlists {
		c.watchlists[k] = v
	}
	for k, m := range s.items {
		inner := make(map[string]watchlist.Item, len(m))
		for ck, it := range m {
			inner[ck] = it
		}
		c.items[k] = inner
	}
	c.transactions = append([]transaction.Transaction(nil), s.transactions...)
	return c
}

// Store is an in-memory ledger store. Units of work are serialised and applied
// to a cloned state that replaces the live one on commit.
type Store struct {
	mu  sync.RWMutex
	st  *state
	now func() time.Time
}

// New creates an empty store
func New() *Store {
	return &Store{
		st:  newState(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Do implements ledger.UnitOfWork
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, tx ledger.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.st.clone()
	if err := fn(ctx, &tx{st: work, now: s.now}); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) read(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.st)
}

func (s *Store) write(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// Accounts returns the account repository view
func (s *Store) Accounts() account.Repository { return &accountRepo{s} }

// Cards returns the card repository view
func (s *Store) Cards() account.CardRepository { return &cardRepo{s} }

// Companies returns the company repository view
func (s *Store) Companies() market.Repository { return &companyRepo{s} }

// Watchlists returns the watchlist repository view
func (s *Store) Watchlists() watchlist.Repository { return &watchlistRepo{s} }

// Transactions returns the audit log view
func (s *Store) Transactions() transaction.Repository { return &transactionRepo{s} }

// portfolioWithHoldings assembles a portfolio with holdings priced at the company price
func (st *state) portfolioWithHoldings(accountID string) (*account.Portfolio, bool) {
	p, ok := st.portfolios[accountID]
	if !ok {
		return nil, false
	}
	p.Companies = st.pricedHoldings(p.ID)
	return &p, true
}

func (st *state) pricedHoldings(portfolioID string) []*account.Holding {
	out := make([]*account.Holding, 0, len(st.holdings[portfolioID]))
	for _, h := range st.holdings[portfolioID] {
		h := h
		if c, ok := st.companies[h.Symbol]; ok {
			h.Price = c.Price
		}
		out = append(out, &h)
	}
	sortHoldings(out)
	return out
}
