package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported values for LEDGER_STORE.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

const defaultStoreTimeout = 5 * time.Second

// Config holds application configuration.
type Config struct {
	Store         string
	DatabaseURL   string
	StoreTimeout  time.Duration
	LogLevel      slog.Level
	IsProduction  bool
	RunMigrations bool
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("LEDGER_STORE", StoreMemory)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("STORE_TIMEOUT", defaultStoreTimeout.String())
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("RUN_MIGRATIONS", true)

	// Actual environment variables override .env values and defaults.
	v.AutomaticEnv()

	cfg := &Config{
		Store:         strings.ToLower(strings.TrimSpace(v.GetString("LEDGER_STORE"))),
		DatabaseURL:   v.GetString("PGSQL_URL"),
		IsProduction:  v.GetBool("IS_PRODUCTION"),
		RunMigrations: v.GetBool("RUN_MIGRATIONS"),
	}

	switch cfg.Store {
	case StoreMemory:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL must be set when LEDGER_STORE is %q", StorePostgres)
		}
	default:
		return nil, fmt.Errorf("unsupported LEDGER_STORE %q (want %q or %q)", cfg.Store, StoreMemory, StorePostgres)
	}

	// Load store timeout (e.g., "500ms", "5s"); zero disables it
	timeoutStr := v.GetString("STORE_TIMEOUT")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil || timeout < 0 {
		timeout = defaultStoreTimeout
		slog.Warn("Invalid value for STORE_TIMEOUT, using default",
			slog.String("value", timeoutStr), slog.Duration("default", timeout))
	}
	cfg.StoreTimeout = timeout

	levelStr := v.GetString("LOG_LEVEL")
	if err := cfg.LogLevel.UnmarshalText([]byte(levelStr)); err != nil {
		cfg.LogLevel = slog.LevelInfo
		slog.Warn("Invalid value for LOG_LEVEL, defaulting to info", slog.String("value", levelStr))
	}

	return cfg, nil
}
