// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aristath/stockledger/internal/database"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for the SQLite database (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	Database     DatabaseConfig
	AlphaVantage AlphaVantageConfig

	// PriceRefreshSchedule is a cron spec with a seconds field. Empty disables the job.
	PriceRefreshSchedule string
}

// DatabaseConfig selects the ledger store driver and connection
type DatabaseConfig struct {
	Driver   database.Driver
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AlphaVantageConfig holds quote API settings
type AlphaVantageConfig struct {
	APIKey            string
	BaseURL           string
	DailyLimit        int
	RequestsPerMinute int
	Timeout           time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	absDataDir, err := filepath.Abs(getEnv("DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("PORT", 3000),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Driver:   database.Driver(getEnv("DB_DRIVER", string(database.DriverSQLite))),
			DSN:      getEnv("DB_DSN", ""),
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "stockledger"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		AlphaVantage: AlphaVantageConfig{
			APIKey:            getEnv("ALPHAVANTAGE_API_KEY", ""),
			BaseURL:           getEnv("ALPHAVANTAGE_BASE_URL", "https://www.alphavantage.co/query"),
			DailyLimit:        getEnvAsInt("ALPHAVANTAGE_DAILY_LIMIT", 25),
			RequestsPerMinute: getEnvAsInt("ALPHAVANTAGE_REQUESTS_PER_MINUTE", 5),
			Timeout:           getEnvAsDuration("QUOTE_TIMEOUT", 10*time.Second),
		},
		PriceRefreshSchedule: getEnv("PRICE_REFRESH_SCHEDULE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Database.Driver != database.DriverPostgres {
		if err := os.MkdirAll(absDataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if !c.Database.Driver.Valid() {
		return fmt.Errorf("unsupported DB_DRIVER %q (want sqlite, sqlite3 or postgres)", c.Database.Driver)
	}
	if c.Database.Driver == database.DriverPostgres && c.Database.DSN == "" && c.Database.Host == "" {
		return fmt.Errorf("postgres driver requires DB_DSN or DB_HOST")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.AlphaVantage.RequestsPerMinute <= 0 {
		return fmt.Errorf("ALPHAVANTAGE_REQUESTS_PER_MINUTE must be positive")
	}

	// Note: the API key is optional; without it every quote lookup is unavailable
	return nil
}

// LedgerDatabase returns the connection settings for the ledger database
func (c *Config) LedgerDatabase() database.Config {
	cfg := database.Config{
		Driver:  c.Database.Driver,
		Profile: database.ProfileLedger,
		Name:    "ledger",
	}
	if c.Database.Driver == database.DriverPostgres {
		cfg.DSN = c.Database.PostgresDSN()
	} else {
		cfg.Path = filepath.Join(c.DataDir, "ledger.db")
	}
	return cfg
}

// PostgresDSN returns DB_DSN when set, otherwise a keyword/value string built from the DB_* parts
func (d DatabaseConfig) PostgresDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s", d.Host, d.Port, d.Name, d.SSLMode)
	if d.User != "" {
		dsn += " user=" + d.User
	}
	if d.Password != "" {
		dsn += " password=" + d.Password
	}
	return dsn
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
