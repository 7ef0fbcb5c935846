package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// RateSource describes the remote exchange rate API
type RateSource struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration // 0 keeps the transport default
}

// Config holds all configuration for the application
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	RateSource RateSource

	// Conversion history
	HistoryFile  string
	HistoryLimit int

	// Rate limiting (serve mode only)
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitBurst    int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:      getEnv("PORT", "8081"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		RateSource: RateSource{
			BaseURL: getEnv("EXCHANGE_RATE_API_BASE_URL", "https://api.exchangerate.host"),
			APIKey:  getEnv("EXCHANGE_RATE_API_KEY", ""),
			Timeout: time.Duration(atoiOr(getEnv("HTTP_TIMEOUT_SECONDS", "30"), 30)) * time.Second,
		},

		HistoryFile:  getEnv("HISTORY_FILE", "conversion_history.json"),
		HistoryLimit: positiveOr(atoiOr(getEnv("HISTORY_LIMIT", "10"), 10), 10),

		RateLimitEnabled:  getEnv("RATE_LIMIT_ENABLED", "true") == "true",
		RateLimitRequests: atoiOr(getEnv("RATE_LIMIT_REQUESTS", "100"), 100),
		RateLimitWindow:   time.Duration(atoiOr(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"), 60)) * time.Second,
		RateLimitBurst:    atoiOr(getEnv("RATE_LIMIT_BURST", "10"), 10),
	}, nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func atoiOr(s string, fallback int) int {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return fallback
	}
	return i
}

func positiveOr(i, fallback int) int {
	if i <= 0 {
		return fallback
	}
	return i
}
