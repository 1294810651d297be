package provider

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/amirasaad/sendnreceive/pkg/currency"
)

// HealthCheckAll checks the health of all providers concurrently and returns
// the result keyed by provider name. Providers without metadata are skipped.
func HealthCheckAll(
	ctx context.Context,
	providers []HealthChecker,
) map[string]error {
	results := make(map[string]error)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, p := range providers {
		named, ok := p.(Named)
		if !ok {
			continue
		}

		wg.Add(1)
		go func(p HealthChecker, name string) {
			defer wg.Done()

			err := p.CheckHealth(ctx)
			mu.Lock()
			results[name] = err
			mu.Unlock()
		}(p, named.Metadata().Name)
	}

	wg.Wait()
	return results
}

// RateHistory keeps the most recent rates, oldest first.
type RateHistory struct {
	rates []RateInfo
	mu    sync.RWMutex
	size  int
}

// NewRateHistory creates a new RateHistory with the specified maximum size
func NewRateHistory(size int) *RateHistory {
	if size <= 0 {
		size = 1
	}
	return &RateHistory{
		rates: make([]RateInfo, 0, size),
		size:  size,
	}
}

// Add adds a new rate to the history
func (h *RateHistory) Add(rate RateInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.rates = append(h.rates, rate)
	if len(h.rates) > h.size {
		h.rates = h.rates[len(h.rates)-h.size:]
	}
}

// Get returns a copy of the rate history
func (h *RateHistory) Get() []RateInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rates := make([]RateInfo, len(h.rates))
	copy(rates, h.rates)
	return rates
}

// Average calculates the average rate recorded after since
func (h *RateHistory) Average(since time.Time) float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var sum float64
	var count int
	for _, rate := range h.rates {
		if rate.Timestamp.After(since) {
			sum += rate.Rate
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// FallbackRateFetcher asks each fetcher in order and returns the first rate
// found. When all fail the errors are joined, so errors.Is still matches.
type FallbackRateFetcher []RateFetcher

// FetchRate implements RateFetcher.
func (f FallbackRateFetcher) FetchRate(ctx context.Context, from, to currency.Code) (*RateInfo, error) {
	var errs []error
	for _, next := range f {
		info, err := next.FetchRate(ctx, from, to)
		if err == nil {
			return info, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrProviderUnavailable
	}
	return nil, errors.Join(errs...)
}
