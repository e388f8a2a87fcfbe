package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"dynamite/internal/domain/account"
	"dynamite/internal/domain/admin"
	"dynamite/internal/domain/chat"
	"dynamite/internal/domain/ledger"
	"dynamite/internal/domain/market"
	"dynamite/internal/domain/transaction"
	"dynamite/internal/domain/watchlist"
	"dynamite/internal/infrastructure/gemini"
	"dynamite/internal/infrastructure/memory"
	"dynamite/internal/infrastructure/postgres"
	httphandlers "dynamite/internal/interfaces/http"
	"dynamite/internal/shared/auth"
	"dynamite/internal/shared/config"
)

// AdminIssuer is the issuer of admin tokens
const AdminIssuer = "dynamite-admin"

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	HealthHandler      *httphandlers.HealthHandler
	AccountHandler     *httphandlers.AccountHandler
	CardHandler        *httphandlers.CardHandler
	WatchlistHandler   *httphandlers.WatchlistHandler
	TransactionHandler *httphandlers.TransactionHandler
	MarketHandler      *httphandlers.MarketHandler
	ChatHandler        *httphandlers.ChatHandler
	AdminHandler       *httphandlers.AdminHandler

	// Auth
	Verifier *auth.Verifier
}

// stores groups the repositories one storage backend provides
type stores struct {
	accounts     account.Repository
	cards        account.CardRepository
	companies    market.Repository
	watchlists   watchlist.Repository
	transactions transaction.Repository
	uow          ledger.UnitOfWork
	pinger       httphandlers.Pinger
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{}

	var st stores
	switch cfg.Database.Driver {
	case config.DriverMemory:
		mem := memory.New()
		st = stores{
			accounts:     mem.Accounts(),
			cards:        mem.Cards(),
			companies:    mem.Companies(),
			watchlists:   mem.Watchlists(),
			transactions: mem.Transactions(),
			uow:          mem,
		}
		logger.Warn("using in-memory store, state is lost on restart")
	default:
		db, err := postgres.New(cfg.Database.Driver, cfg.Database.ConnectionString(), postgres.PoolConfig{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		deps.DB = db
		logger.Info("connected to database", zap.String("driver", db.Driver()))

		if cfg.Database.AutoMigrate {
			if err := db.Migrate(ctx); err != nil {
				db.Close()
				return nil, err
			}
			logger.Info("database schema applied")
		}

		st = stores{
			accounts:     postgres.NewAccountRepository(db),
			cards:        postgres.NewCardRepository(db),
			companies:    postgres.NewCompanyRepository(db),
			watchlists:   postgres.NewWatchlistRepository(db),
			transactions: postgres.NewTransactionRepository(db),
			uow:          postgres.NewUnitOfWork(db),
			pinger:       db,
		}
	}

	verifier, err := newVerifier(cfg.Auth, logger)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.Verifier = verifier

	// Initialize domain services
	accountService := account.NewService(st.accounts, st.cards)
	ledgerService := ledger.NewService(st.uow, ledger.Policy{
		MinBuyAmount:   cfg.Ledger.MinBuyAmount,
		HoldingEpsilon: cfg.Ledger.HoldingEpsilon,
		SellTolerance:  cfg.Ledger.SellTolerance,
	})
	marketService := market.NewService(st.companies)
	watchlistService := watchlist.NewService(st.watchlists, st.companies)
	transactionService := transaction.NewService(st.transactions)
	adminService := admin.NewService(admin.Config{
		KeyHash:     cfg.Admin.KeyHash,
		TokenSecret: cfg.Admin.TokenSecret,
		TokenTTL:    cfg.Admin.TokenTTL,
		Issuer:      AdminIssuer,
	}, st.accounts, st.cards, st.watchlists, st.transactions)

	var assistant chat.Assistant
	if cfg.Chat.APIKey != "" {
		a, err := gemini.New(ctx, cfg.Chat.APIKey, cfg.Chat.Model, cfg.Chat.MaxTokens)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to initialize chat assistant: %w", err)
		}
		assistant = a
	} else {
		logger.Warn("GEMINI_API_KEY not set, chat endpoint disabled")
	}
	chatService := chat.NewService(assistant)

	// Initialize handlers
	deps.HealthHandler = httphandlers.NewHealthHandler(st.pinger, logger)
	deps.AccountHandler = httphandlers.NewAccountHandler(accountService, logger)
	deps.CardHandler = httphandlers.NewCardHandler(accountService, ledgerService, logger)
	deps.WatchlistHandler = httphandlers.NewWatchlistHandler(watchlistService, logger)
	deps.TransactionHandler = httphandlers.NewTransactionHandler(transactionService, ledgerService, logger)
	deps.MarketHandler = httphandlers.NewMarketHandler(marketService, logger)
	deps.ChatHandler = httphandlers.NewChatHandler(chatService, logger)
	deps.AdminHandler = httphandlers.NewAdminHandler(adminService, logger)

	return deps, nil
}

// newVerifier prefers the identity provider key set and falls back to the shared development secret
func newVerifier(cfg config.AuthConfig, logger *zap.Logger) (*auth.Verifier, error) {
	if cfg.JWKSURL == "" {
		logger.Warn("AUTH_JWKS_URL not set, verifying tokens with AUTH_DEV_SECRET")
		return auth.NewHMACVerifier(cfg.DevSecret, cfg.Issuer, ""), nil
	}

	verifier, err := auth.NewJWKSVerifier(cfg.JWKSURL, cfg.Issuer, auth.JWKSOptions{
		RefreshInterval: cfg.RefreshInterval,
		OnRefreshError: func(err error) {
			logger.Warn("JWKS refresh failed", zap.Error(err))
		},
	})
	if err != nil {
		return nil, err
	}
	logger.Info("verifying identity tokens against JWKS", zap.String("url", cfg.JWKSURL))
	return verifier, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.Verifier != nil {
		d.Verifier.Close()
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
