package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dynamite/internal/domain/account"
	"dynamite/internal/domain/ledger"
	"dynamite/internal/domain/market"
	"dynamite/internal/infrastructure/postgres"
	"dynamite/internal/interfaces/worker"
	"dynamite/internal/shared/auth"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.db.Migrate(cmd.Context()); err != nil {
			return err
		}
		Success(cmd.OutOrStdout(), "schema applied")
		return nil
	},
}

var seedFile string

var seedCompaniesCmd = &cobra.Command{
	Use:   "seed-companies",
	Short: "Upsert companies from a YAML or JSON seed file",
	Example: `  admin seed-companies --file companies.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(seedFile)
		if err != nil {
			return fmt.Errorf("failed to open seed file: %w", err)
		}
		defer f.Close()

		params, err := market.ParseSeed(f)
		if err != nil {
			return err
		}
		if len(params) == 0 {
			Warning(cmd.OutOrStdout(), "%s lists no companies", seedFile)
			return nil
		}

		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		n, err := market.NewService(postgres.NewCompanyRepository(s.db)).Seed(cmd.Context(), params)
		if err != nil {
			return err
		}
		Success(cmd.OutOrStdout(), "seeded %d companies from %s", n, seedFile)
		return nil
	},
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List accounts with their balances",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		accounts, err := account.NewService(postgres.NewAccountRepository(s.db), postgres.NewCardRepository(s.db)).List(cmd.Context())
		if err != nil {
			return err
		}
		printAccounts(cmd, accounts)
		return nil
	},
}

func printAccounts(cmd *cobra.Command, accounts []*account.Account) {
	out := cmd.OutOrStdout()
	if len(accounts) == 0 {
		Info(out, "no accounts")
		return
	}

	t := newTable("ACCOUNT", "BALANCE", "VALUE", "CREATED").alignRight(1, 2)
	balance, value := decimal.Zero, decimal.Zero
	for _, a := range accounts {
		t.add(a.ID, USD(a.AccountBalance), USD(a.AccountValue), a.CreatedAt.Format(time.DateOnly))
		balance = balance.Add(a.AccountBalance)
		value = value.Add(a.AccountValue)
	}
	t.add("total", USD(balance), USD(value), "")
	t.render(out)
}

var (
	revalueWorkers int
	revalueTimeout time.Duration
)

var revalueCmd = &cobra.Command{
	Use:   "revalue",
	Short: "Recompute every portfolio value from current prices",
	Example: `  admin revalue --workers 8`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), revalueTimeout)
		defer cancel()

		accounts, err := postgres.NewAccountRepository(s.db).List(ctx)
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			Info(cmd.OutOrStdout(), "no accounts to revalue")
			return nil
		}

		ids := make([]string, len(accounts))
		for i, a := range accounts {
			ids[i] = a.ID
		}

		ledgerService := ledger.NewService(postgres.NewUnitOfWork(s.db), ledger.Policy{
			MinBuyAmount:   s.cfg.Ledger.MinBuyAmount,
			HoldingEpsilon: s.cfg.Ledger.HoldingEpsilon,
			SellTolerance:  s.cfg.Ledger.SellTolerance,
		})

		start := time.Now()
		results, err := revalueAll(ctx, ledgerService, ids, revalueWorkers, s.logger)
		if err != nil {
			return err
		}
		return reportRevalue(cmd, results, time.Since(start))
	},
}

// revalueAll fans the accounts out over a worker pool and collects one result per account
func revalueAll(ctx context.Context, revaluer worker.Revaluer, accountIDs []string, workers int, logger *zap.Logger) ([]worker.RevalueResult, error) {
	results := make(chan worker.RevalueResult, len(accountIDs))

	pool := worker.NewPool(workers, 0, workers, logger)
	pool.Start()

	var enqueueErr error
	for _, id := range accountIDs {
		if err := ctx.Err(); err != nil {
			enqueueErr = err
			break
		}
		if err := pool.Enqueue(ctx, worker.NewRevalueJob(id, revaluer, results)); err != nil {
			enqueueErr = fmt.Errorf("failed to queue account %s: %w", id, err)
			break
		}
	}
	pool.Shutdown()
	close(results)

	collected := make([]worker.RevalueResult, 0, len(accountIDs))
	for r := range results {
		collected = append(collected, r)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].AccountID < collected[j].AccountID })
	return collected, enqueueErr
}

func reportRevalue(cmd *cobra.Command, results []worker.RevalueResult, elapsed time.Duration) error {
	out := cmd.OutOrStdout()
	t := newTable("ACCOUNT", "VALUE", "STATUS").alignRight(1)

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			t.add(r.AccountID, "", errorStyle.Render(r.Err.Error()))
			continue
		}
		t.add(r.AccountID, USD(r.Value), successStyle.Render("ok"))
	}
	t.render(out)
	fmt.Fprintln(out)

	if failed > 0 {
		Warning(out, "revalued %d of %d accounts in %s", len(results)-failed, len(results), elapsed.Round(time.Millisecond))
		return fmt.Errorf("%d accounts failed to revalue", failed)
	}
	Success(out, "revalued %d accounts in %s", len(results), elapsed.Round(time.Millisecond))
	return nil
}

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key [key]",
	Short: "Hash an admin key for ADMIN_KEY_HASH",
	Long: `Hash an admin key with bcrypt. The key is read from the argument,
or from the first line of stdin when no argument is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := readKey(cmd, args)
		if err != nil {
			return err
		}
		hash, err := auth.HashSecret(key)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func readKey(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.New("no key given")
	}
	key := strings.TrimRight(line, "\r\n")
	if key == "" {
		return "", errors.New("no key given")
	}
	return key, nil
}

func init() {
	seedCompaniesCmd.Flags().StringVarP(&seedFile, "file", "f", "companies.yaml", "seed file to load")

	revalueCmd.Flags().IntVarP(&revalueWorkers, "workers", "w", 4, "number of concurrent workers")
	revalueCmd.Flags().DurationVar(&revalueTimeout, "timeout", 30*time.Minute, "overall time limit")
}
