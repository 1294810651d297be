// Package frankfurter fetches pairwise FX quotes from the Frankfurter API.
package frankfurter

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amirasaad/sendnreceive/infra/provider/httpjson"
	"github.com/amirasaad/sendnreceive/pkg/config"
	"github.com/amirasaad/sendnreceive/pkg/currency"
	"github.com/amirasaad/sendnreceive/pkg/provider"
	"golang.org/x/time/rate"
)

const name = "frankfurter"

// latestResponse is e.g. {"amount":1.0,"base":"GHS","date":"2026-01-02","rates":{"USD":0.083}}.
type latestResponse struct {
	Amount float64            `json:"amount"`
	Base   string             `json:"base"`
	Date   string             `json:"date"`
	Rates  map[string]float64 `json:"rates"`
}

// Provider implements provider.RateFetcher. Outbound calls share one token bucket.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a Provider limited to cfg.RequestsPerMinute with cfg.BurstSize.
func New(cfg *config.QuoteProvider, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		baseURL:    strings.TrimRight(cfg.ApiUrl, "/"),
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		limiter:    newLimiter(cfg.RequestsPerMinute, cfg.BurstSize),
		logger:     logger.With("provider", name),
		now:        time.Now,
	}
}

func newLimiter(perMinute, burst int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}

// FetchRate returns the rate converting one unit of from into to.
func (p *Provider) FetchRate(ctx context.Context, from, to currency.Code) (*provider.RateInfo, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", provider.ErrProviderUnavailable, err)
	}

	q := url.Values{}
	q.Set("from", string(from))
	q.Set("to", string(to))
	endpoint := p.baseURL + "/latest?" + q.Encode()
	p.logger.Debug("Fetching quote rate", "url", endpoint)

	var resp latestResponse
	if err := httpjson.Get(ctx, p.httpClient, endpoint, nil, &resp); err != nil {
		p.logger.Warn("Quote rate fetch failed", "from", from, "to", to, "error", err)
		return nil, err
	}

	r, ok := resp.Rates[string(to)]
	if !ok {
		return nil, fmt.Errorf("%w: %s->%s", provider.ErrMissingRate, from, to)
	}
	if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return nil, fmt.Errorf("%w: invalid rate %v for %s->%s", provider.ErrMissingRate, r, from, to)
	}

	return &provider.RateInfo{
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         r,
		Timestamp:    p.now().UTC(),
		Provider:     name,
	}, nil
}

// CheckHealth requests the EUR->USD rate.
func (p *Provider) CheckHealth(ctx context.Context) error {
	_, err := p.FetchRate(ctx, currency.EUR, currency.USD)
	return err
}

// Metadata describes the provider.
func (p *Provider) Metadata() provider.ProviderMetadata {
	return provider.ProviderMetadata{Name: name, URL: p.baseURL, IsActive: true}
}

var (
	_ provider.RateFetcher   = (*Provider)(nil)
	_ provider.HealthChecker = (*Provider)(nil)
	_ provider.Named         = (*Provider)(nil)
)
