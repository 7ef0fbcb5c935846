package models

import (
	"sort"
	"time"
)

// TimestampLayout is the ISO-8601 layout used for conversion timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// CurrencySymbol describes one entry of the currency catalog.
type CurrencySymbol struct {
	Description string `json:"description"`
	Code        string `json:"code,omitempty"`
}

// Catalog maps currency codes to their descriptions.
type Catalog map[string]CurrencySymbol

// Has reports whether code is part of the catalog.
func (catalog Catalog) Has(code string) bool {
	_, ok := catalog[code]
	return ok
}

// Codes returns the catalog codes in alphabetical order.
func (catalog Catalog) Codes() []string {
	codes := make([]string, 0, len(catalog))
	for code := range catalog {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// ConversionRecord is one completed conversion. Values are never mutated
// after creation.
type ConversionRecord struct {
	Base      string  `json:"base"`
	Target    string  `json:"target"`
	Amount    float64 `json:"amount"`
	Converted float64 `json:"converted"`
	Rate      float64 `json:"rate"`
	Timestamp string  `json:"timestamp"`
}

// Date returns the date part of the record timestamp.
func (record ConversionRecord) Date() string {
	if len(record.Timestamp) >= len("2006-01-02") {
		return record.Timestamp[:len("2006-01-02")]
	}
	return record.Timestamp
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// HistoryDocument is the on-disk layout of the history file.
type HistoryDocument struct {
	Conversions []ConversionRecord `json:"conversions"`
}

// ConversionResult is what a single Convert call produced. Records holds the
// successful conversions in input order; skipped targets are listed by name.
type ConversionResult struct {
	Base           string             `json:"base"`
	Amount         float64            `json:"amount"`
	Records        []ConversionRecord `json:"records"`
	InvalidTargets []string           `json:"invalid_targets,omitempty"`
	FailedTargets  []string           `json:"failed_targets,omitempty"`
	Warnings       []string           `json:"warnings,omitempty"`
}

type ConvertRequest struct {
	Base    string   `json:"base" form:"base" binding:"required"`
	Targets []string `json:"targets" form:"targets" binding:"required,min=1"`
	Amount  *float64 `json:"amount" form:"amount" binding:"required"`
}

type CurrenciesResponse struct {
	Currencies Catalog `json:"currencies"`
	Count      int     `json:"count"`
}

type HistoryResponse struct {
	Conversions []ConversionRecord `json:"conversions"`
	Count       int                `json:"count"`
}

type HealthCheck struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
