package service

import (
	"context"

	"github.com/dalfonso89/currency-converter/internal/models"
)

// RateSource is the remote exchange rate API seen by the converter.
type RateSource interface {
	// FetchCatalog returns the supported currencies. Implementations cache
	// the first successful result.
	FetchCatalog(ctx context.Context) (models.Catalog, error)
	// FetchRate returns how many units of target one unit of base buys.
	FetchRate(ctx context.Context, base, target string) (float64, error)
}

// HistoryStore receives every successful conversion.
type HistoryStore interface {
	Append(record models.ConversionRecord)
	Persist() error
}
