package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dynamite/internal/infrastructure/postgres"
	"dynamite/internal/shared/config"
	"dynamite/internal/shared/telemetry"
)

var (
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "admin",
	Short: "Dynamite admin CLI",
	Long: `Maintenance commands for the Dynamite brokerage simulator.

Commands read the same environment (or .env file) as the API server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		Error(os.Stderr, "%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCompaniesCmd)
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(revalueCmd)
	rootCmd.AddCommand(hashKeyCmd)
}

var errMemoryDriver = errors.New("admin commands need a SQL database, DB_DRIVER=memory has nothing to administer")

// session is the shared state of a command that talks to the database
type session struct {
	cfg    *config.Config
	db     *postgres.DB
	logger *zap.Logger
}

func (s *session) Close() {
	s.db.Close()
	_ = s.logger.Sync()
}

// openSession loads configuration and connects to the configured database
func openSession() (*session, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Database.Driver == config.DriverMemory {
		return nil, errMemoryDriver
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger, err := telemetry.NewLogger(cfg.Log.Development, level)
	if err != nil {
		return nil, err
	}

	db, err := postgres.New(cfg.Database.Driver, cfg.Database.ConnectionString(), postgres.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	logger.Debug("connected to database", zap.String("driver", db.Driver()))

	return &session{cfg: cfg, db: db, logger: logger}, nil
}
