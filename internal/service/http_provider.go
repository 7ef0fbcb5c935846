package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dalfonso89/currency-converter/internal/apperrors"
	"github.com/dalfonso89/currency-converter/internal/config"
	"github.com/dalfonso89/currency-converter/internal/logger"
	"github.com/dalfonso89/currency-converter/internal/models"
)

const catalogKey = "catalog"

// symbolsResponse is the body of GET /symbols
type symbolsResponse struct {
	Success *bool                            `json:"success"`
	Symbols map[string]models.CurrencySymbol `json:"symbols"`
	Error   json.RawMessage                  `json:"error"`
}

// latestResponse is the body of GET /latest
type latestResponse struct {
	Success *bool              `json:"success"`
	Base    string             `json:"base"`
	Rates   map[string]float64 `json:"rates"`
	Error   json.RawMessage    `json:"error"`
}

// HTTPRateSource implements RateSource against an exchangerate.host style API
type HTTPRateSource struct {
	configuration config.RateSource
	logger        *logger.Logger
	httpClient    *http.Client

	catalogMutex sync.RWMutex
	catalog      models.Catalog

	singleFlightGroup singleflight.Group
}

// NewHTTPRateSource creates a new HTTP rate source
func NewHTTPRateSource(configuration config.RateSource, logger *logger.Logger) *HTTPRateSource {
	return &HTTPRateSource{
		configuration: configuration,
		logger:        logger,
		httpClient: &http.Client{
			Timeout: configuration.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// FetchCatalog returns the currency catalog, fetching it on first use.
// Failures are not cached.
func (source *HTTPRateSource) FetchCatalog(ctx context.Context) (models.Catalog, error) {
	source.catalogMutex.RLock()
	if source.catalog != nil {
		cached := source.catalog
		source.catalogMutex.RUnlock()
		return cached, nil
	}
	source.catalogMutex.RUnlock()

	result, err, _ := source.singleFlightGroup.Do(catalogKey, func() (interface{}, error) {
		// A previous flight may have filled the cache since the check above
		source.catalogMutex.RLock()
		cached := source.catalog
		source.catalogMutex.RUnlock()
		if cached != nil {
			return cached, nil
		}
		return source.fetchCatalog(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.(models.Catalog), nil
}

func (source *HTTPRateSource) fetchCatalog(ctx context.Context) (models.Catalog, error) {
	source.logger.Debug("Fetching available currencies")

	var response symbolsResponse
	if err := source.getJSON(ctx, source.buildURL("symbols", nil), &response); err != nil {
		source.logger.Warnf("Currency catalog request failed (%s): %v", apperrors.Describe(err), err)
		return nil, apperrors.New(apperrors.ErrorTypeSourceUnavailable, "could not retrieve currency list", err)
	}

	if response.Success == nil || !*response.Success {
		return nil, apperrors.New(apperrors.ErrorTypeSourceUnavailable,
			"could not retrieve currency list: "+providerError(response.Error), nil)
	}
	if response.Symbols == nil {
		return nil, apperrors.New(apperrors.ErrorTypeSourceUnavailable,
			"could not retrieve currency list: response has no symbols", nil)
	}

	catalog := make(models.Catalog, len(response.Symbols))
	for code, symbol := range response.Symbols {
		if symbol.Code == "" {
			symbol.Code = code
		}
		catalog[code] = symbol
	}

	source.catalogMutex.Lock()
	source.catalog = catalog
	source.catalogMutex.Unlock()

	source.logger.Infof("Loaded %d currencies", len(catalog))
	return catalog, nil
}

// FetchRate returns the base to target rate. A single attempt is made.
func (source *HTTPRateSource) FetchRate(ctx context.Context, base, target string) (float64, error) {
	source.logger.Debugf("Fetching exchange rate for %s to %s", base, target)

	query := url.Values{}
	query.Set("base", base)
	query.Set("symbols", target)

	pair := base + "/" + target

	var response latestResponse
	if err := source.getJSON(ctx, source.buildURL("latest", query), &response); err != nil {
		source.logger.Warnf("Rate request for %s failed (%s): %v", pair, apperrors.Describe(err), err)
		return 0, apperrors.New(apperrors.ErrorTypeRateUnavailable, "rate request for "+pair+" failed", err)
	}

	if response.Success != nil && !*response.Success {
		return 0, apperrors.New(apperrors.ErrorTypeRateUnavailable,
			"rate request for "+pair+" failed: "+providerError(response.Error), nil)
	}

	rate, ok := response.Rates[target]
	if !ok {
		return 0, apperrors.New(apperrors.ErrorTypeRateUnavailable, "could not find rate for "+target, nil)
	}
	if rate <= 0 {
		return 0, apperrors.New(apperrors.ErrorTypeRateUnavailable,
			fmt.Sprintf("provider returned non-positive rate %v for %s", rate, pair), nil)
	}

	return rate, nil
}

// HealthCheck reports whether the catalog can be obtained
func (source *HTTPRateSource) HealthCheck(ctx context.Context) error {
	_, err := source.FetchCatalog(ctx)
	return err
}

// buildURL joins the configured base URL with endpoint and query, adding the
// access key when one is configured.
func (source *HTTPRateSource) buildURL(endpoint string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	if source.configuration.APIKey != "" {
		query.Set("access_key", source.configuration.APIKey)
	}

	endpointURL := strings.TrimRight(source.configuration.BaseURL, "/") + "/" + endpoint
	if encoded := query.Encode(); encoded != "" {
		endpointURL += "?" + encoded
	}
	return endpointURL
}

func (source *HTTPRateSource) getJSON(ctx context.Context, endpointURL string, target interface{}) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpointURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := source.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned status %d", response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// providerError renders the optional "error" object of a response
func providerError(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "unknown error"
	}

	var detailed struct {
		Code int    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	}
	if err := json.Unmarshal(raw, &detailed); err == nil {
		switch {
		case detailed.Info != "":
			return detailed.Info
		case detailed.Type != "":
			return detailed.Type
		}
	}

	var message string
	if err := json.Unmarshal(raw, &message); err == nil && message != "" {
		return message
	}
	return string(raw)
}
