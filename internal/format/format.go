// Package format renders amounts and rates for display. Values are stored
// and computed as float64; rounding happens only here.
package format

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dalfonso89/currency-converter/internal/models"
)

// Money renders v with two decimals, e.g. 89.995 -> "90.00"
func Money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Rate renders v with six decimals
func Rate(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(6)
}

// Conversion renders a record as "100.00 USD = 90.00 EUR (rate: 0.900000)".
// Same-currency records are marked instead of showing the rate.
func Conversion(record models.ConversionRecord) string {
	line := Money(record.Amount) + " " + record.Base + " = " + Money(record.Converted) + " " + record.Target
	if record.Base == record.Target {
		return line + " (same currency)"
	}
	return line + " (rate: " + Rate(record.Rate) + ")"
}

// HistoryEntry renders a record as "2024-01-02: 100.00 USD → 90.00 EUR"
func HistoryEntry(record models.ConversionRecord, arrow string) string {
	return record.Date() + ": " + Money(record.Amount) + " " + record.Base + " " + arrow + " " + Money(record.Converted) + " " + record.Target
}

// Truncate shortens s to at most n runes
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Sentence capitalizes the first letter of message and appends a period
func Sentence(message string) string {
	if message == "" {
		return message
	}
	return strings.ToUpper(message[:1]) + message[1:] + "."
}
