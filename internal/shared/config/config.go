package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverPGX      = "pgx"
	DriverMemory   = "memory"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Admin     AdminConfig
	Ledger    LedgerConfig
	Chat      ChatConfig
	Worker    WorkerConfig
	TLS       TLSConfig
	Telemetry TelemetryConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	AllowedHosts []string
}

type DatabaseConfig struct {
	Driver          string
	URL             string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// AuthConfig describes how identity provider tokens are verified.
// JWKSURL selects RS256 verification; DevSecret selects HS256 for local runs.
type AuthConfig struct {
	JWKSURL         string
	Issuer          string
	DevSecret       string
	RefreshInterval time.Duration
	SessionCookie   string
}

type AdminConfig struct {
	KeyHash     string
	TokenSecret string
	TokenTTL    time.Duration
}

type LedgerConfig struct {
	MinBuyAmount   decimal.Decimal
	HoldingEpsilon decimal.Decimal
	SellTolerance  decimal.Decimal
}

type ChatConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
}

type WorkerConfig struct {
	Count     int
	QueueSize int
	JobDelay  time.Duration
}

type TLSConfig struct {
	Enabled      bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	OTLPEndpoint string
	MetricsPort  string
}

type LogConfig struct {
	Development bool
	Level       string
}

// LoadDotEnv loads variables from the given files, or .env when none are given.
// Variables already set in the environment win. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func Load() (*Config, error) {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxOpen, err := getIntEnv("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, err
	}
	maxIdle, err := getIntEnv("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return nil, err
	}
	connLifetime, err := getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	jwksRefresh, err := getDurationEnv("AUTH_JWKS_REFRESH", time.Hour)
	if err != nil {
		return nil, err
	}
	adminTTL, err := getDurationEnv("ADMIN_TOKEN_TTL", 8*time.Hour)
	if err != nil {
		return nil, err
	}

	minBuy, err := getDecimalEnv("LEDGER_MIN_BUY_AMOUNT", "50")
	if err != nil {
		return nil, err
	}
	epsilon, err := getDecimalEnv("LEDGER_HOLDING_EPSILON", "0.1")
	if err != nil {
		return nil, err
	}
	sellTolerance, err := getDecimalEnv("LEDGER_SELL_TOLERANCE", "0.005")
	if err != nil {
		return nil, err
	}

	chatMaxTokens, err := getIntEnv("CHAT_MAX_TOKENS", 80)
	if err != nil {
		return nil, err
	}

	workers, err := getIntEnv("WORKER_COUNT", 4)
	if err != nil {
		return nil, err
	}
	queueSize, err := getIntEnv("WORKER_QUEUE_SIZE", 100)
	if err != nil {
		return nil, err
	}
	jobDelay, err := getDurationEnv("WORKER_JOB_DELAY", 0)
	if err != nil {
		return nil, err
	}

	// Parse allowed hosts (comma-separated list)
	var allowedHosts []string
	for _, host := range strings.Split(getEnv("ALLOWED_HOSTS", ""), ",") {
		if host = strings.TrimSpace(host); host != "" {
			allowedHosts = append(allowedHosts, host)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Host:         getEnv("HOST", "0.0.0.0"),
			AllowedHosts: allowedHosts,
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			URL:             getEnv("DATABASE_URL", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            dbPort,
			User:            getEnv("DB_USER", "dynamite"),
			Password:        getEnv("DB_PASSWORD", ""),
			DBName:          getEnv("DB_NAME", "dynamite"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    maxOpen,
			MaxIdleConns:    maxIdle,
			ConnMaxLifetime: connLifetime,
			AutoMigrate:     getBoolEnv("DB_AUTO_MIGRATE", false),
		},
		Auth: AuthConfig{
			JWKSURL:         getEnv("AUTH_JWKS_URL", ""),
			Issuer:          getEnv("AUTH_ISSUER", ""),
			DevSecret:       getEnv("AUTH_DEV_SECRET", ""),
			RefreshInterval: jwksRefresh,
			SessionCookie:   getEnv("AUTH_SESSION_COOKIE", "__session"),
		},
		Admin: AdminConfig{
			KeyHash:     getEnv("ADMIN_KEY_HASH", ""),
			TokenSecret: getEnv("ADMIN_TOKEN_SECRET", ""),
			TokenTTL:    adminTTL,
		},
		Ledger: LedgerConfig{
			MinBuyAmount:   minBuy,
			HoldingEpsilon: epsilon,
			SellTolerance:  sellTolerance,
		},
		Chat: ChatConfig{
			APIKey:    getEnv("GEMINI_API_KEY", ""),
			Model:     getEnv("CHAT_MODEL", ""),
			MaxTokens: chatMaxTokens,
		},
		Worker: WorkerConfig{
			Count:     workers,
			QueueSize: queueSize,
			JobDelay:  jobDelay,
		},
		TLS: TLSConfig{
			Enabled:      getBoolEnv("TLS_ENABLED", false),
			CertPath:     getEnv("TLS_CERT_PATH", ""),
			KeyPath:      getEnv("TLS_KEY_PATH", ""),
			RedirectHTTP: getBoolEnv("TLS_REDIRECT_HTTP", false),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "dynamite-api"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			OTLPEndpoint: getEnvAllowEmpty("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
			MetricsPort:  getEnv("METRICS_PORT", "9464"),
		},
		Log: LogConfig{
			Development: getBoolEnv("LOG_DEVELOPMENT", false),
			Level:       getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverPGX, DriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER must be one of postgres, pgx, memory; got %q", c.Database.Driver)
	}

	if c.Auth.JWKSURL == "" && c.Auth.DevSecret == "" {
		return fmt.Errorf("AUTH_JWKS_URL or AUTH_DEV_SECRET is required")
	}

	if c.Admin.KeyHash != "" && c.Admin.TokenSecret == "" {
		return fmt.Errorf("ADMIN_TOKEN_SECRET is required when ADMIN_KEY_HASH is set")
	}
	if c.Admin.TokenTTL <= 0 {
		return fmt.Errorf("ADMIN_TOKEN_TTL must be positive")
	}

	if !c.Ledger.MinBuyAmount.IsPositive() {
		return fmt.Errorf("LEDGER_MIN_BUY_AMOUNT must be positive")
	}
	if !c.Ledger.HoldingEpsilon.IsPositive() {
		return fmt.Errorf("LEDGER_HOLDING_EPSILON must be positive")
	}
	if c.Ledger.SellTolerance.IsNegative() {
		return fmt.Errorf("LEDGER_SELL_TOLERANCE must not be negative")
	}

	if c.Worker.Count <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive")
	}

	// Validate TLS configuration
	if c.TLS.Enabled {
		if c.TLS.CertPath == "" {
			return fmt.Errorf("TLS_CERT_PATH is required when TLS_ENABLED=true")
		}
		if c.TLS.KeyPath == "" {
			return fmt.Errorf("TLS_KEY_PATH is required when TLS_ENABLED=true")
		}
	}
	return nil
}

// ConnectionString returns DATABASE_URL when set, otherwise a key/value DSN
func (c *DatabaseConfig) ConnectionString() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty is getEnv where an explicitly empty variable overrides the default
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept: true, false, 1, 0, yes, no (case-insensitive)
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getDecimalEnv(key, defaultValue string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getEnv(key, defaultValue))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
