package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"dynamite/internal/domain/account"
	"dynamite/internal/domain/market"
	"dynamite/internal/domain/transaction"
	"dynamite/internal/domain/watchlist"
)

func sortHoldings(hs []*account.Holding) {
	sort.Slice(hs, func(i, j int) bool { return hs[i].Symbol < hs[j].Symbol })
}

type accountRepo struct{ s *Store }

func (r *accountRepo) Ensure(ctx context.Context, id string) (*account.Account, error) {
	var out *account.Account
	err := r.s.write(func(st *state) error {
		if _, ok := st.accounts[id]; !ok {
			now := r.s.now()
			st.accounts[id] = account.Account{ID: id, CreatedAt: now, UpdatedAt: now}
			st.portfolios[id] = account.Portfolio{ID: uuid.NewString(), AccountID: id}
			st.watchlists[id] = watchlistRow{id: uuid.NewString(), accountID: id, name: account.DefaultWatchlistName}
		}
		out = st.fullAccount(id)
		return nil
	})
	return out, err
}

func (r *accountRepo) GetByID(ctx context.Context, id string) (*account.Account, error) {
	var out *account.Account
	r.s.read(func(st *state) {
		if _, ok := st.accounts[id]; ok {
			out = st.fullAccount(id)
		}
	})
	if out == nil {
		return nil, account.ErrAccountNotFound
	}
	return out, nil
}

func (r *accountRepo) List(ctx context.Context) ([]*account.Account, error) {
	var out []*account.Account
	r.s.read(func(st *state) {
		for id := range st.accounts {
			out = append(out, st.fullAccount(id))
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) || (out[i].CreatedAt.Equal(out[j].CreatedAt) && out[i].ID < out[j].ID) })
	return out, nil
}

func (r *accountRepo) GetPortfolio(ctx context.Context, accountID string) (*account.Portfolio, error) {
	var (
		out *account.Portfolio
		ok  bool
	)
	r.s.read(func(st *state) {
		out, ok = st.portfolioWithHoldings(accountID)
	})
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return out, nil
}

func (st *state) fullAccount(id string) *account.Account {
	a := st.accounts[id]
	if p, ok := st.portfolioWithHoldings(id); ok {
		a.Portfolio = p
	}
	return &a
}

type cardRepo struct{ s *Store }

func (r *cardRepo) ListByAccountID(ctx context.Context, accountID string) ([]*account.Card, error) {
	out := []*account.Card{}
	r.s.read(func(st *state) {
		for _, c := range st.cards {
			if c.AccountID == accountID {
				c := c
				out = append(out, &c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) || (out[i].CreatedAt.Equal(out[j].CreatedAt) && out[i].CardDigits < out[j].CardDigits) })
	return out, nil
}

func (r *cardRepo) Create(ctx context.Context, params account.CreateCardParams) (*account.Card, error) {
	var out *account.Card
	err := r.s.write(func(st *state) error {
		if _, ok := st.accounts[params.AccountID]; !ok {
			return account.ErrAccountNotFound
		}
		if _, ok := st.cards[params.CardDigits]; ok {
			return account.ErrDuplicateCard
		}
		c := account.Card{
			ID:         uuid.NewString(),
			AccountID:  params.AccountID,
			CardDigits: params.CardDigits,
			HolderName: params.HolderName,
			Value:      params.Value,
			Expiration: params.Expiration,
			Color:      params.Color,
			Type:       account.CardTypeVisa,
			CreatedAt:  r.s.now(),
		}
		st.cards[c.CardDigits] = c
		out = &c
		return nil
	})
	return out, err
}

func (r *cardRepo) Delete(ctx context.Context, accountID, cardDigits string) error {
	return r.s.write(func(st *state) error {
		c, ok := st.cards[cardDigits]
		if !ok || c.AccountID != accountID {
			return account.ErrCardNotFound
		}
		delete(st.cards, cardDigits)
		return nil
	})
}

type companyRepo struct{ s *Store }

func (r *companyRepo) List(ctx context.Context) ([]*market.Company, error) {
	out := []*market.Company{}
	r.s.read(func(st *state) {
		for _, c := range st.companies {
			c := c
			out = append(out, &c)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (r *companyRepo) GetBySymbol(ctx context.Context, symbol string) (*market.Company, error) {
	var (
		c  market.Company
		ok bool
	)
	r.s.read(func(st *state) {
		c, ok = st.companies[symbol]
	})
	if !ok {
		return nil, market.ErrCompanyNotFound
	}
	return &c, nil
}

func (r *companyRepo) Upsert(ctx context.Context, params market.UpsertParams) (*market.Company, error) {
	var out market.Company
	err := r.s.write(func(st *state) error {
		c, ok := st.companies[params.Symbol]
		if !ok {
			c = market.Company{ID: uuid.NewString(), Symbol: params.Symbol}
		}
		c.Price = params.Price
		c.Summary = append([]byte(nil), params.Summary...)
		c.UpdatedAt = r.s.now()
		st.companies[c.Symbol] = c
		out = c
		return nil
	})
	return &out, err
}

type watchlistRepo struct{ s *Store }

func (r *watchlistRepo) ListCompanies(ctx context.Context, accountID string) ([]*market.Company, error) {
	out := []*market.Company{}
	r.s.read(func(st *state) {
		wl, ok := st.watchlists[accountID]
		if !ok {
			return
		}
		for _, it := range st.items[wl.id] {
			if c, ok := st.companies[it.Symbol]; ok {
				c := c
				out = append(out, &c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (r *watchlistRepo) Add(ctx context.Context, accountID string, company *market.Company) (*watchlist.Item, error) {
	var out watchlist.Item
	err := r.s.write(func(st *state) error {
		wl, ok := st.watchlists[accountID]
		if !ok {
			return watchlist.ErrNotFound
		}
		if _, ok := st.items[wl.id][company.ID]; ok {
			return watchlist.ErrAlreadyWatched
		}
		if st.items[wl.id] == nil {
			st.items[wl.id] = make(map[string]watchlist.Item)
		}
		out = watchlist.Item{WatchlistID: wl.id, CompanyID: company.ID, Symbol: company.Symbol, CreatedAt: r.s.now()}
		st.items[wl.id][company.ID] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *watchlistRepo) Remove(ctx context.Context, accountID, companyID string) error {
	return r.s.write(func(st *state) error {
		wl, ok := st.watchlists[accountID]
		if !ok {
			return watchlist.ErrNotFound
		}
		if _, ok := st.items[wl.id][companyID]; !ok {
			return watchlist.ErrNotWatched
		}
		delete(st.items[wl.id], companyID)
		return nil
	})
}

type transactionRepo struct{ s *Store }

func (r *transactionRepo) ListByAccountID(ctx context.Context, accountID string, limit, offset int) ([]*transaction.Transaction, error) {
	out := []*transaction.Transaction{}
	r.s.read(func(st *state) {
		skipped := 0
		for i := len(st.transactions) - 1; i >= 0; i-- {
			t := st.transactions[i]
			if t.AccountID != accountID {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			if limit > 0 && len(out) >= limit {
				return
			}
			out = append(out, &t)
		}
	})
	return out, nil
}
