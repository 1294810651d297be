// Package provider defines the contracts of the external rate and conversion providers.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirasaad/sendnreceive/pkg/currency"
)

// Common errors for provider operations
var (
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrUnexpectedStatus    = errors.New("unexpected status code")
	ErrMalformedResponse   = errors.New("malformed provider response")
	ErrMissingRate         = errors.New("rate missing from provider response")
)

// RateInfo contains information about a single exchange rate
type RateInfo struct {
	FromCurrency currency.Code `json:"from_currency"`
	ToCurrency   currency.Code `json:"to_currency"`
	Rate         float64       `json:"rate"`
	Timestamp    time.Time     `json:"timestamp"`
	Provider     string        `json:"provider"`
	// Cached is set when the rate was served from a cache instead of the provider.
	Cached bool `json:"-"`
}

// StatusError is returned when a provider answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %d", ErrUnexpectedStatus, e.StatusCode)
	}
	return fmt.Sprintf("%s %d: %s", ErrUnexpectedStatus, e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// StablecoinPrices maps a coin id (usd-coin, euro-coin, solana) to its price
// in each quoted currency (lower-case ISO code).
type StablecoinPrices map[string]map[string]float64

// Price returns the price of coinID in vs, if quoted.
func (p StablecoinPrices) Price(coinID, vs string) (float64, bool) {
	quotes, ok := p[coinID]
	if !ok {
		return 0, false
	}
	v, ok := quotes[vs]
	return v, ok
}

// FiatRateFetcher fetches a table of fiat rates keyed by a base currency.
type FiatRateFetcher interface {
	FetchRates(ctx context.Context, base currency.Code) (map[currency.Code]float64, error)
}

// StablecoinFetcher fetches stablecoin prices.
type StablecoinFetcher interface {
	FetchPrices(ctx context.Context) (StablecoinPrices, error)
}

// RateFetcher gets the exchange rate for a currency pair
type RateFetcher interface {
	FetchRate(ctx context.Context, from, to currency.Code) (*RateInfo, error)
}

// HealthChecker defines the interface for checking provider health
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// ProviderMetadata contains metadata about a provider
type ProviderMetadata struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	IsActive bool   `json:"is_active"`
}

// Named is implemented by providers that report metadata.
type Named interface {
	Metadata() ProviderMetadata
}
