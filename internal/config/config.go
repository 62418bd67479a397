// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir           string // Base directory for the databases (always absolute)
	Port              int
	DevMode           bool
	LogLevel          string
	LogFile           string // Optional rotating log file path
	ScoringConfigPath string // Optional scoring.yaml overriding threshold defaults

	// Slack incoming webhooks. Empty = notifications disabled.
	SlackWebhookLog   string
	SlackWebhookAlert string

	// External data providers
	CoinGeckoAPIKey string

	// Daily pipeline schedule (cron spec) and scoring concurrency
	PipelineSchedule string
	ScoringWorkers   int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("ONEGLANCE_DATA_DIR", "./data")

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:           absDataDir,
		Port:              getEnvAsInt("PORT", 8080),
		DevMode:           getEnvAsBool("DEV_MODE", false),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFile:           getEnv("LOG_FILE", ""),
		ScoringConfigPath: getEnv("SCORING_CONFIG", ""),
		SlackWebhookLog:   getEnv("SLACK_WEBHOOK_LOG", getEnv("SLACK_WEBHOOK_URL", "")),
		SlackWebhookAlert: getEnv("SLACK_WEBHOOK_ALERT", ""),
		CoinGeckoAPIKey:   getEnv("COINGECKO_API_KEY", ""),
		PipelineSchedule:  getEnv("PIPELINE_SCHEDULE", "0 15 6 * * *"), // daily, after markets roll over
		ScoringWorkers:    getEnvAsInt("SCORING_WORKERS", 4),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.ScoringWorkers < 1 {
		return fmt.Errorf("SCORING_WORKERS must be at least 1, got %d", c.ScoringWorkers)
	}
	return nil
}

// CryptoDBPath returns the path for the crypto database
func (c *Config) CryptoDBPath() string {
	return filepath.Join(c.DataDir, "crypto.db")
}

// StocksDBPath returns the path for the stocks database
func (c *Config) StocksDBPath() string {
	return filepath.Join(c.DataDir, "stocks.db")
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
