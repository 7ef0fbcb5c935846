package service

import (
	"context"
	"strings"
	"time"

	"github.com/dalfonso89/currency-converter/internal/apperrors"
	"github.com/dalfonso89/currency-converter/internal/logger"
	"github.com/dalfonso89/currency-converter/internal/models"
)

// Converter turns an amount in a base currency into one or more target
// currencies and records every fetched conversion in the history.
type Converter struct {
	source    RateSource
	validator *Validator
	history   HistoryStore
	logger    *logger.Logger
	now       func() time.Time
}

// NewConverter creates a converter. The converter owns source and history
// for its whole lifetime.
func NewConverter(source RateSource, history HistoryStore, logger *logger.Logger) *Converter {
	return &Converter{
		source:    source,
		validator: NewValidator(source, logger),
		history:   history,
		logger:    logger,
		now:       time.Now,
	}
}

// Catalog returns the currencies supported by the rate source
func (converter *Converter) Catalog(ctx context.Context) (models.Catalog, error) {
	return converter.source.FetchCatalog(ctx)
}

// Validator exposes the validator used for input checks
func (converter *Converter) Validator() *Validator {
	return converter.validator
}

// Convert converts amount from base into each target.
//
// An invalid base, or a call where no target is valid, returns an
// ErrInvalidCurrencyCode error and no records. Otherwise invalid targets and
// targets whose rate could not be fetched are skipped and listed in the
// result; the remaining records keep the input order.
func (converter *Converter) Convert(ctx context.Context, base string, targets []string, amount float64) (models.ConversionResult, error) {
	result := models.ConversionResult{
		Base:    base,
		Amount:  amount,
		Records: []models.ConversionRecord{},
	}

	if err := CheckAmount(amount); err != nil {
		return result, err
	}

	if !converter.validator.IsValidCode(ctx, base) {
		converter.logger.Warnf("Rejected conversion: %q is not a valid currency code", base)
		return result, apperrors.New(apperrors.ErrorTypeInvalidCurrencyCode,
			"'"+base+"' is not a valid currency code", nil)
	}

	valid, invalid := converter.validator.Partition(ctx, targets)
	result.InvalidTargets = invalid
	if len(invalid) > 0 {
		converter.logger.Warnf("Invalid target currency code(s): %s", strings.Join(invalid, ", "))
	}
	if len(valid) == 0 {
		return result, apperrors.New(apperrors.ErrorTypeInvalidCurrencyCode,
			"invalid target currency code(s): "+strings.Join(invalid, ", "), nil)
	}

	for _, target := range valid {
		if target == base {
			result.Records = append(result.Records, converter.newRecord(base, target, amount, 1.0))
			continue
		}

		rate, err := converter.source.FetchRate(ctx, base, target)
		if err != nil {
			converter.logger.Warnf("Skipping %s: %v", target, err)
			result.FailedTargets = append(result.FailedTargets, target)
			continue
		}

		record := converter.newRecord(base, target, amount, rate)
		result.Records = append(result.Records, record)

		converter.history.Append(record)
		if err := converter.history.Persist(); err != nil {
			converter.logger.Warnf("Could not save history: %v", err)
			result.Warnings = append(result.Warnings, "Could not save history: "+err.Error())
		}

		converter.logger.WithFields(map[string]interface{}{
			"base":      base,
			"target":    target,
			"amount":    amount,
			"rate":      rate,
			"converted": record.Converted,
		}).Info("Conversion completed")
	}

	return result, nil
}

func (converter *Converter) newRecord(base, target string, amount, rate float64) models.ConversionRecord {
	return models.ConversionRecord{
		Base:      base,
		Target:    target,
		Amount:    amount,
		Converted: amount * rate,
		Rate:      rate,
		Timestamp: models.FormatTimestamp(converter.now()),
	}
}
