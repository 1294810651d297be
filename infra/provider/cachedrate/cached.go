// Package cachedrate decorates a provider.RateFetcher with a cache.Cache.
package cachedrate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/sendnreceive/pkg/cache"
	"github.com/amirasaad/sendnreceive/pkg/currency"
	"github.com/amirasaad/sendnreceive/pkg/provider"
)

// Fetcher serves rates from the cache and falls through to next on a miss.
type Fetcher struct {
	next   provider.RateFetcher
	cache  cache.Cache
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// New creates a Fetcher storing entries under prefix for ttl.
func New(
	next provider.RateFetcher,
	c cache.Cache,
	ttl time.Duration,
	prefix string,
	logger *slog.Logger,
) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		next:   next,
		cache:  c,
		ttl:    ttl,
		prefix: prefix,
		logger: logger.With("component", "cached-rate"),
	}
}

func (f *Fetcher) key(from, to currency.Code) string {
	return fmt.Sprintf("%squote:%s:%s", f.prefix, from, to)
}

// FetchRate returns the cached rate for the pair, marked Cached, or fetches
// and stores it. Cache errors are logged and never fail the call.
func (f *Fetcher) FetchRate(ctx context.Context, from, to currency.Code) (*provider.RateInfo, error) {
	key := f.key(from, to)

	var info provider.RateInfo
	found, err := f.cache.Get(ctx, key, &info)
	if err != nil {
		f.logger.Error("Error getting from cache", "key", key, "error", err)
	}
	if found && info.Rate > 0 {
		f.logger.Debug("Cache hit for FetchRate", "key", key)
		info.Cached = true
		return &info, nil
	}

	f.logger.Debug("Cache miss for FetchRate, fetching from next provider", "key", key)
	fetched, err := f.next.FetchRate(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if err := f.cache.Set(ctx, key, fetched, f.ttl); err != nil {
		f.logger.Error("Error setting cache for FetchRate", "key", key, "error", err)
	}
	return fetched, nil
}

// CheckHealth delegates to next when it reports health.
func (f *Fetcher) CheckHealth(ctx context.Context) error {
	if hc, ok := f.next.(provider.HealthChecker); ok {
		return hc.CheckHealth(ctx)
	}
	return nil
}

// Metadata wraps the metadata of next.
func (f *Fetcher) Metadata() provider.ProviderMetadata {
	md := provider.ProviderMetadata{Name: "unknown", IsActive: true}
	if named, ok := f.next.(provider.Named); ok {
		md = named.Metadata()
	}
	md.Name = fmt.Sprintf("cached(%s)", md.Name)
	return md
}

var (
	_ provider.RateFetcher   = (*Fetcher)(nil)
	_ provider.HealthChecker = (*Fetcher)(nil)
	_ provider.Named         = (*Fetcher)(nil)
)
