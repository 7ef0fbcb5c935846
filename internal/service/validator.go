package service

import (
	"context"
	"strings"

	"github.com/dalfonso89/currency-converter/internal/logger"
)

// Validator checks currency codes against the rate source catalog.
// It fails closed: without a catalog no code is valid.
type Validator struct {
	source RateSource
	logger *logger.Logger
}

// NewValidator creates a validator backed by source
func NewValidator(source RateSource, logger *logger.Logger) *Validator {
	return &Validator{source: source, logger: logger}
}

// IsValidCode reports whether code is in the catalog
func (validator *Validator) IsValidCode(ctx context.Context, code string) bool {
	catalog, err := validator.source.FetchCatalog(ctx)
	if err != nil {
		validator.logger.Warnf("Cannot validate %q without a currency catalog: %v", code, err)
		return false
	}
	return catalog.Has(code)
}

// Partition splits codes into valid and invalid ones, preserving order.
func (validator *Validator) Partition(ctx context.Context, codes []string) (valid, invalid []string) {
	for _, code := range codes {
		if validator.IsValidCode(ctx, code) {
			valid = append(valid, code)
		} else {
			invalid = append(invalid, code)
		}
	}
	return valid, invalid
}

// NormalizeCode upper-cases and trims a user supplied code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ParseCodes splits a comma separated list such as "eur, gbp,JPY" into
// normalized codes. Empty entries are dropped.
func ParseCodes(input string) []string {
	var codes []string
	for _, part := range strings.Split(input, ",") {
		if code := NormalizeCode(part); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
