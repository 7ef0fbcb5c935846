package testutils

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/dalfonso89/currency-converter/internal/config"
	"github.com/dalfonso89/currency-converter/internal/logger"
	"github.com/dalfonso89/currency-converter/internal/models"
)

// MockLogger creates a logger for testing that discards its output
func MockLogger() *logger.Logger {
	return logger.NewWithOutput("debug", "text", io.Discard)
}

// MockConfig creates a mock configuration for testing
func MockConfig() *config.Config {
	return &config.Config{
		Port:      "8081",
		LogLevel:  "debug",
		LogFormat: "text",

		RateSource: config.RateSource{
			BaseURL: "https://api.test.com",
			APIKey:  "",
			Timeout: 5 * time.Second,
		},

		HistoryFile:  "conversion_history.json",
		HistoryLimit: 10,

		RateLimitEnabled:  true,
		RateLimitRequests: 100,
		RateLimitWindow:   60 * time.Second,
		RateLimitBurst:    10,
	}
}

// MockConfigWithServer returns a configuration pointing at a mock rate
// server and a history file inside a per-test temp directory.
func MockConfigWithServer(t testing.TB, serverURL string) *config.Config {
	cfg := MockConfig()
	cfg.RateSource.BaseURL = serverURL
	cfg.HistoryFile = filepath.Join(t.TempDir(), "conversion_history.json")
	return cfg
}

// MockCatalog returns the catalog served by the mock rate server
func MockCatalog() models.Catalog {
	return models.Catalog{
		"USD": {Description: "United States Dollar", Code: "USD"},
		"EUR": {Description: "Euro", Code: "EUR"},
		"GBP": {Description: "British Pound Sterling", Code: "GBP"},
		"JPY": {Description: "Japanese Yen", Code: "JPY"},
	}
}

// MockRecord creates a conversion record for testing
func MockRecord(target string, amount, rate float64) models.ConversionRecord {
	return models.ConversionRecord{
		Base:      "USD",
		Target:    target,
		Amount:    amount,
		Converted: amount * rate,
		Rate:      rate,
		Timestamp: models.FormatTimestamp(time.Date(2024, time.January, 2, 15, 4, 5, 123456000, time.UTC)),
	}
}

// MockContextWithTimeout creates a mock context with timeout for testing
func MockContextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}
